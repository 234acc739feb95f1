// Package scene provides the minimal scene graph behind the topology
// engine: transform nodes, a perspective camera and ray casting for
// picking. The graph never stores references between topology entities;
// ownership is strictly parent → child, which keeps teardown a simple
// depth-first walk.
package scene

import "github.com/dd0wney/cluso-topoview/pkg/render"

// Node is one element of the scene graph. A bare node is a transform
// group; a node with Geometry+Material is a mesh (device body); a node
// with Texture is a sprite (device label).
//
// Rotation is Euler radians, applied yaw (Y) then pitch (X). Scale is
// uniform.
type Node struct {
	Position Vec3
	Rotation Vec3
	Scale    float64
	Visible  bool

	Geometry *render.Geometry
	Material *render.Material
	Texture  *render.Texture

	// Opacity is a per-node multiplier over the material opacity, so a
	// shared pool material can stay untouched while one mesh is dimmed.
	Opacity float64

	// Radius is the pick/projection radius of a mesh in local units.
	Radius float64

	// Lines marks the geometry as a line list: consecutive vertex pairs
	// form independent segments (the connection batch).
	Lines bool

	parent   *Node
	children []*Node
}

// NewGroup creates an empty transform node.
func NewGroup() *Node {
	return &Node{Scale: 1, Opacity: 1, Visible: true}
}

// NewMesh creates a renderable body node.
func NewMesh(g *render.Geometry, m *render.Material, radius float64) *Node {
	n := NewGroup()
	n.Geometry = g
	n.Material = m
	n.Radius = radius
	return n
}

// NewSprite creates a renderable label node.
func NewSprite(t *render.Texture, m *render.Material) *Node {
	n := NewGroup()
	n.Texture = t
	n.Material = m
	return n
}

// Add attaches child to n. A child already attached elsewhere is
// reparented.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. Unknown children are ignored.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Children returns the direct children of n.
func (n *Node) Children() []*Node {
	return n.children
}

// Traverse visits n and every descendant depth-first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// TransformPoint maps a point from n's local space to world space.
func (n *Node) TransformPoint(p Vec3) Vec3 {
	return n.transformPoint(p)
}

// transformPoint maps a point from n's local space to world space.
func (n *Node) transformPoint(p Vec3) Vec3 {
	p = p.Scale(n.Scale)
	p = p.RotateY(n.Rotation.Y)
	p = p.RotateX(n.Rotation.X)
	p = p.Add(n.Position)
	if n.parent != nil {
		return n.parent.transformPoint(p)
	}
	return p
}

// WorldPosition returns n's origin in world space, composing every parent
// transform.
func (n *Node) WorldPosition() Vec3 {
	if n.parent != nil {
		return n.parent.transformPoint(n.Position)
	}
	return n.Position
}

// WorldScale returns the product of n's scale and every parent scale.
func (n *Node) WorldScale() float64 {
	s := n.Scale
	for p := n.parent; p != nil; p = p.parent {
		s *= p.Scale
	}
	return s
}

// WorldVisible reports whether n and all of its ancestors are visible.
func (n *Node) WorldVisible() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if !cur.Visible {
			return false
		}
	}
	return true
}
