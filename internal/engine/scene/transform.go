package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/tinyrender/pkg/formats"
)

// UnknownTransformError reports a transform operation name that is not
// translate, rotate or scale.
type UnknownTransformError struct {
	Op string
}

func (e *UnknownTransformError) Error() string {
	return fmt.Sprintf("unknown transform operation %q", e.Op)
}

// BuildModelMatrix composes ops in list order, each post-multiplied onto
// the running matrix, starting from identity. Rotations are Euler angles
// in degrees applied as X then Y then Z. No matrix is returned when any
// operation is unknown.
func BuildModelMatrix(ops []formats.TransformDoc) (mgl32.Mat4, error) {
	m := mgl32.Ident4()
	for _, op := range ops {
		v := op.Value
		switch op.Op {
		case "translate":
			m = m.Mul4(mgl32.Translate3D(v[0], v[1], v[2]))
		case "rotate":
			m = m.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(v[0])))
			m = m.Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(v[1])))
			m = m.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(v[2])))
		case "scale":
			m = m.Mul4(mgl32.Scale3D(v[0], v[1], v[2]))
		default:
			return mgl32.Mat4{}, &UnknownTransformError{Op: op.Op}
		}
	}
	return m, nil
}
