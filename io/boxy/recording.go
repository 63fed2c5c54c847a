package boxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/cwbudde/algo-phase/dsp/buffer"
	"github.com/cwbudde/algo-phase/dsp/core"
)

// ErrNoFiles is returned when a directory holds no matching BOXY files.
var ErrNoFiles = errors.New("boxy: no data files")

// multiFileRe matches "<name><montage>.<block>", e.g. "1anc071a.001".
var multiFileRe = regexp.MustCompile(`(\w)\.(\d+)$`)

// headerTolerance bounds the relative difference allowed between the rate
// headers of files in one recording.
const headerTolerance = 1e-9

// Options controls how a recording is located and decoded.
type Options struct {
	DataType  DataType // defaults to AC
	MultiFile bool     // read every *.NNN file instead of a single *.txt
	Logger    *slog.Logger
}

// Recording is the decoded content of one or more BOXY files.
type Recording struct {
	Labels       []string
	SampleRate   float64 // Hz, from the first file
	CCFFrequency float64 // Hz, from the first file
	DataType     DataType
	Data         *buffer.Matrix
}

// File is one input file with its montage and block designation.
type File struct {
	Path    string
	Montage string
	Block   string
}

// Files lists the inputs found under dir in read order. In single-file mode
// dir must contain exactly one *.txt file.
func Files(dir string, multi bool) ([]File, error) {
	if !multi {
		matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
		if err != nil {
			return nil, err
		}
		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("%w: no *.txt in %s", ErrNoFiles, dir)
		case 1:
			return []File{{Path: matches[0], Montage: "a", Block: "001"}}, nil
		default:
			return nil, fmt.Errorf("boxy: expected one *.txt in %s, found %d", dir, len(matches))
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := multiFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		files = append(files, File{Path: filepath.Join(dir, e.Name()), Montage: m[1], Block: m[2]})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no *.NNN files in %s", ErrNoFiles, dir)
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Read decodes the recording at path. A regular file is read on its own;
// a directory is searched according to opts.MultiFile.
func Read(path string, opts Options) (*Recording, error) {
	if opts.DataType == "" {
		opts.DataType = AC
	}
	if _, err := ParseDataType(string(opts.DataType)); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	var files []File
	if info.IsDir() {
		if files, err = Files(path, opts.MultiFile); err != nil {
			return nil, err
		}
	} else {
		files = []File{{Path: path, Montage: "a", Block: "001"}}
	}

	var (
		montages []string
		byMtg    = map[string][]File{}
	)
	for _, f := range files {
		if _, ok := byMtg[f.Montage]; !ok {
			montages = append(montages, f.Montage)
		}
		byMtg[f.Montage] = append(byMtg[f.Montage], f)
	}

	rec := &Recording{DataType: opts.DataType}
	var (
		stacked []*buffer.Matrix
		ref     *Block
	)
	for mi, mtg := range montages {
		var (
			blocks []*buffer.Matrix
			first  *Block
		)
		for _, f := range byMtg[mtg] {
			b, err := readFile(f.Path)
			if err != nil {
				return nil, err
			}
			ch, err := b.Channels(opts.DataType)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Path, err)
			}
			log.Debug("boxy block",
				"file", f.Path,
				"montage", mtg,
				"block", f.Block,
				"layout", b.Layout.String(),
				"channels", ch.Rows(),
				"samples", ch.Cols(),
			)
			if ref == nil {
				ref = b
			} else if !core.NearlyEqual(b.SampleRate, ref.SampleRate, headerTolerance) ||
				!core.NearlyEqual(b.CCFFrequency, ref.CCFFrequency, headerTolerance) {
				log.Warn("boxy header mismatch",
					"file", f.Path,
					"rate_hz", b.SampleRate,
					"ccf_hz", b.CCFFrequency,
					"want_rate_hz", ref.SampleRate,
					"want_ccf_hz", ref.CCFFrequency,
				)
			}
			if first == nil {
				first = b
			} else if ch.Cols() != blocks[0].Cols() {
				log.Warn("boxy block lengths differ", "file", f.Path, "samples", ch.Cols(), "first", blocks[0].Cols())
			}
			blocks = append(blocks, ch)
		}

		if mi == 0 {
			rec.SampleRate = first.SampleRate
			rec.CCFFrequency = first.CCFFrequency
		}
		for det := range first.Detectors {
			for src := range first.Sources {
				rec.Labels = append(rec.Labels, Label(src+1, det+1, mi+1))
			}
		}

		joined, err := buffer.HStack(blocks...)
		if err != nil {
			return nil, fmt.Errorf("boxy: montage %s: %w", mtg, err)
		}
		stacked = append(stacked, joined)
	}

	data, err := buffer.VStack(stacked...)
	if err != nil {
		return nil, fmt.Errorf("boxy: montages: %w", err)
	}
	rec.Data = data
	log.Info("boxy recording",
		"path", path,
		"files", len(files),
		"montages", len(montages),
		"channels", data.Rows(),
		"samples", data.Cols(),
		"rate_hz", rec.SampleRate,
	)
	return rec, nil
}

// Label names a channel "S<source>_D<detector>_<montage>", all one-based.
func Label(source, detector, montage int) string {
	return fmt.Sprintf("S%d_D%d_%d", source, detector, montage)
}

func readFile(path string) (*Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := ReadBlock(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Source adapts a BOXY recording to the pipeline input interface.
type Source struct {
	Path    string
	Options Options
}

// Load reads the recording and returns its channel matrix.
func (s Source) Load(ctx context.Context) (*buffer.Matrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := Read(s.Path, s.Options)
	if err != nil {
		return nil, err
	}
	return rec.Data, nil
}
