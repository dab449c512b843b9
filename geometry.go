package vkcomp

// Size is a rectangle extent in physical pixels.
type Size struct {
	Width  int32
	Height int32
}

// Transform describes the output transform the compositor applies to a
// frame, matching the wl_output transform enumeration. The renderer
// records render-pass boundaries only; applying the transform to drawn
// content is the responsibility of the layer recording draw commands.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

var transformNames = map[Transform]string{
	TransformNormal:     "normal",
	Transform90:         "90",
	Transform180:        "180",
	Transform270:        "270",
	TransformFlipped:    "flipped",
	TransformFlipped90:  "flipped-90",
	TransformFlipped180: "flipped-180",
	TransformFlipped270: "flipped-270",
}

func (t Transform) String() string {
	if name, ok := transformNames[t]; ok {
		return name
	}
	return "unknown"
}
