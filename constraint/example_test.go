package constraint_test

import (
	"fmt"

	"github.com/dacapoday/slot/array"
	"github.com/dacapoday/slot/constraint"
)

func Example() {
	// three corners per triangle
	triangles := array.New[int](3)
	corners, _ := constraint.NewLinear(triangles, 3, 0)
	points, _ := array.NewConstrained[float64](3, corners)
	normals, _ := array.NewConstrained[float64](3, corners)

	triangles.Resize(2)
	fmt.Println(points.Size(), normals.Size())

	err := points.Resize(7)
	fmt.Println(err)

	// Output:
	// 6 6
	// resize refused by own constraint: 6 to 7
}
