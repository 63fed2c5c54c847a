package pipeline_test

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/algo-phase/pipeline"
)

func ExamplePipeline_Run() {
	row := make([]float64, 64)
	for i := range row {
		row[i] = 120
	}

	p, err := pipeline.New(pipeline.DefaultParams())
	if err != nil {
		panic(err)
	}

	rec := pipeline.NewRecorder()
	res, err := p.RunRows(context.Background(), [][]float64{row}, rec)
	if err != nil {
		panic(err)
	}

	fmt.Println(len(rec.Order), rec.Order[0], rec.Order[6])
	fmt.Println(math.Abs(res.Final.At(0, 10)) < 1e-6)
	// Output:
	// 7 bad_points picoseconds
	// true
}
