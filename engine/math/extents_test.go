package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtentsExpand(t *testing.T) {
	e := NewExtents3DEmpty()
	e = e.Expand(NewVec3(1, -2, 3))
	e = e.Expand(NewVec3(-1, 2, 0))

	assert.Equal(t, NewVec3(-1, -2, 0), e.Min)
	assert.Equal(t, NewVec3(1, 2, 3), e.Max)
}

func TestExtentsUnion(t *testing.T) {
	a := ExtentsFromPositions([]Vec3{{-1, -1, -1}, {1, 1, 1}})
	b := ExtentsFromPositions([]Vec3{{3, -1, -1}, {5, 1, 1}})

	u := a.Union(b)
	assert.Equal(t, NewVec3(-1, -1, -1), u.Min)
	assert.Equal(t, NewVec3(5, 1, 1), u.Max)
	// The union center is not either input's center.
	assert.Equal(t, NewVec3(2, 0, 0), u.Center())
}

func TestExtentsCenter(t *testing.T) {
	e := ExtentsFromPositions([]Vec3{{0, 0, 0}, {4, 2, 6}})
	assert.Equal(t, NewVec3(2, 1, 3), e.Center())
}

func TestExtentsFromPositionsSinglePoint(t *testing.T) {
	e := ExtentsFromPositions([]Vec3{{7, 8, 9}})
	assert.Equal(t, e.Min, e.Max)
	assert.Equal(t, NewVec3(7, 8, 9), e.Center())
}
