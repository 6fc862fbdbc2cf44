package cache

import (
	"fmt"
	gomath "math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/Faultbox/brushmesh/pkg/collider"
	"github.com/Faultbox/brushmesh/pkg/convert"
	"github.com/Faultbox/brushmesh/pkg/entity"
	"github.com/Faultbox/brushmesh/pkg/math"
	"github.com/Faultbox/brushmesh/pkg/mesh"
)

// Payload layout, in protobuf wire format:
//
//	Result   { 1: repeated Entity; 2: Stats; 3: packed culled ids }
//	Entity   { 1: name; 2: kind; 3: repeated Mesh; 4: repeated Collider }
//	Mesh     { 1: name; 2: positions; 3: normals; 4: uvs; 5: uv2;
//	           6: tangents; 7: indices; 8: spans (start, count pairs) }
//	Collider { 1: name; 2: shape; 3: Mesh; 4: convex; 5: trigger;
//	           6: brushes }
//	Stats    { 1..11: counters in declaration order }
//
// Float attributes are packed fixed32, integers packed varints.

func encodeResult(res *convert.Result) []byte {
	var b []byte
	for i := range res.Entities {
		b = appendMessage(b, 1, encodeEntity(&res.Entities[i]))
	}
	b = appendMessage(b, 2, encodeStats(res.Stats))
	b = appendInts(b, 3, res.Culled)
	return b
}

func decodeResult(b []byte) (*convert.Result, error) {
	res := &convert.Result{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch num {
		case 1:
			er, err := decodeEntity(v)
			if err != nil {
				return err
			}
			res.Entities = append(res.Entities, er)
		case 2:
			st, err := decodeStats(v)
			if err != nil {
				return err
			}
			res.Stats = st
		case 3:
			ids, err := consumeInts(v)
			if err != nil {
				return err
			}
			res.Culled = ids
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func encodeEntity(er *convert.EntityResult) []byte {
	var b []byte
	b = appendString(b, 1, er.Name)
	b = appendVarint(b, 2, uint64(er.Kind))
	for _, m := range er.Meshes {
		b = appendMessage(b, 3, encodeMesh(m))
	}
	for i := range er.Colliders {
		b = appendMessage(b, 4, encodeCollider(&er.Colliders[i]))
	}
	return b
}

func decodeEntity(b []byte) (convert.EntityResult, error) {
	var er convert.EntityResult
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch num {
		case 1:
			er.Name = string(v)
		case 2:
			er.Kind = entity.Kind(x)
		case 3:
			m, err := decodeMesh(v)
			if err != nil {
				return err
			}
			er.Meshes = append(er.Meshes, m)
		case 4:
			c, err := decodeCollider(v)
			if err != nil {
				return err
			}
			er.Colliders = append(er.Colliders, c)
		}
		return nil
	})
	return er, err
}

func encodeMesh(m *mesh.Mesh) []byte {
	var b []byte
	b = appendString(b, 1, m.Name)
	b = appendFloats(b, 2, vec3Floats(m.Positions))
	b = appendFloats(b, 3, vec3Floats(m.Normals))
	b = appendFloats(b, 4, vec2Floats(m.UVs))
	b = appendFloats(b, 5, vec2Floats(m.UV2))
	tangents := make([]float32, 0, len(m.Tangents)*4)
	for _, t := range m.Tangents {
		tangents = append(tangents, t[:]...)
	}
	b = appendFloats(b, 6, tangents)
	indices := make([]int, len(m.Indices))
	for i, idx := range m.Indices {
		indices[i] = int(idx)
	}
	b = appendInts(b, 7, indices)
	spans := make([]int, 0, len(m.Spans)*2)
	for _, s := range m.Spans {
		spans = append(spans, s.Start, s.Count)
	}
	b = appendInts(b, 8, spans)
	return b
}

func decodeMesh(b []byte) (*mesh.Mesh, error) {
	m := &mesh.Mesh{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch num {
		case 1:
			m.Name = string(v)
		case 2, 3, 4, 5, 6:
			f, err := consumeFloats(v)
			if err != nil {
				return err
			}
			switch num {
			case 2:
				m.Positions, err = floatsVec3(f)
			case 3:
				m.Normals, err = floatsVec3(f)
			case 4:
				m.UVs, err = floatsVec2(f)
			case 5:
				m.UV2, err = floatsVec2(f)
			case 6:
				if len(f)%4 != 0 {
					return fmt.Errorf("tangent buffer length %d", len(f))
				}
				m.Tangents = make([][4]float32, len(f)/4)
				for i := range m.Tangents {
					copy(m.Tangents[i][:], f[i*4:])
				}
			}
			return err
		case 7:
			ids, err := consumeInts(v)
			if err != nil {
				return err
			}
			m.Indices = make([]uint32, len(ids))
			for i, id := range ids {
				m.Indices[i] = uint32(id)
			}
		case 8:
			ids, err := consumeInts(v)
			if err != nil {
				return err
			}
			if len(ids)%2 != 0 {
				return fmt.Errorf("span buffer length %d", len(ids))
			}
			for i := 0; i < len(ids); i += 2 {
				m.Spans = append(m.Spans, mesh.Span{Start: ids[i], Count: ids[i+1]})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.RecalculateBounds()
	return m, nil
}

func encodeCollider(c *collider.Collider) []byte {
	var b []byte
	b = appendString(b, 1, c.Name)
	b = appendVarint(b, 2, uint64(c.Shape))
	if c.Mesh != nil {
		b = appendMessage(b, 3, encodeMesh(c.Mesh))
	}
	b = appendVarint(b, 4, protowire.EncodeBool(c.IsConvex))
	b = appendVarint(b, 5, protowire.EncodeBool(c.IsTrigger))
	b = appendInts(b, 6, c.Brushes)
	return b
}

func decodeCollider(b []byte) (collider.Collider, error) {
	var c collider.Collider
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch num {
		case 1:
			c.Name = string(v)
		case 2:
			c.Shape = collider.Shape(x)
		case 3:
			m, err := decodeMesh(v)
			if err != nil {
				return err
			}
			c.Mesh = m
			c.Box = m.Bounds
		case 4:
			c.IsConvex = protowire.DecodeBool(x)
		case 5:
			c.IsTrigger = protowire.DecodeBool(x)
		case 6:
			ids, err := consumeInts(v)
			if err != nil {
				return err
			}
			c.Brushes = ids
		}
		return nil
	})
	return c, err
}

func encodeStats(st convert.Stats) []byte {
	var b []byte
	for i, n := range statFields(&st) {
		b = appendVarint(b, protowire.Number(i+1), uint64(*n))
	}
	return b
}

func decodeStats(b []byte) (convert.Stats, error) {
	var st convert.Stats
	fields := statFields(&st)
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		if i := int(num) - 1; i >= 0 && i < len(fields) {
			*fields[i] = int(x)
		}
		return nil
	})
	return st, err
}

func statFields(st *convert.Stats) []*int {
	return []*int{
		&st.Entities, &st.Brushes, &st.Faces, &st.FacesCulled, &st.FacesDegenerate,
		&st.VerticesSnapped, &st.Meshes, &st.Vertices, &st.Triangles, &st.Colliders,
		&st.Repaired,
	}
}

// walk calls fn for every field of a message. Length-delimited values are
// passed in v, varints in x. Other wire types are skipped.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := fn(num, typ, v, 0); err != nil {
				return err
			}
			b = b[n:]
		case protowire.VarintType:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := fn(num, typ, nil, x); err != nil {
				return err
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, x uint64) []byte {
	if x == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, x)
}

func appendFloats(b []byte, num protowire.Number, f []float32) []byte {
	if len(f) == 0 {
		return b
	}
	packed := make([]byte, 0, len(f)*4)
	for _, x := range f {
		packed = protowire.AppendFixed32(packed, gomath.Float32bits(x))
	}
	return appendMessage(b, num, packed)
}

func appendInts(b []byte, num protowire.Number, ids []int) []byte {
	if len(ids) == 0 {
		return b
	}
	var packed []byte
	for _, id := range ids {
		packed = protowire.AppendVarint(packed, uint64(id))
	}
	return appendMessage(b, num, packed)
}

func consumeFloats(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("packed float field of %d bytes", len(b))
	}
	out := make([]float32, 0, len(b)/4)
	for len(b) > 0 {
		x, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		out = append(out, gomath.Float32frombits(x))
		b = b[n:]
	}
	return out, nil
}

func consumeInts(b []byte) ([]int, error) {
	var out []int
	for len(b) > 0 {
		x, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		out = append(out, int(x))
		b = b[n:]
	}
	return out, nil
}

func vec3Floats(v []math.Vec3) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, p := range v {
		out = append(out, p.X, p.Y, p.Z)
	}
	return out
}

func vec2Floats(v []math.Vec2) []float32 {
	out := make([]float32, 0, len(v)*2)
	for _, p := range v {
		out = append(out, p.X, p.Y)
	}
	return out
}

func floatsVec3(f []float32) ([]math.Vec3, error) {
	if len(f)%3 != 0 {
		return nil, fmt.Errorf("vec3 buffer length %d", len(f))
	}
	out := make([]math.Vec3, len(f)/3)
	for i := range out {
		out[i] = math.Vec3{X: f[i*3], Y: f[i*3+1], Z: f[i*3+2]}
	}
	return out, nil
}

func floatsVec2(f []float32) ([]math.Vec2, error) {
	if len(f)%2 != 0 {
		return nil, fmt.Errorf("vec2 buffer length %d", len(f))
	}
	out := make([]math.Vec2, len(f)/2)
	for i := range out {
		out[i] = math.Vec2{X: f[i*2], Y: f[i*2+1]}
	}
	return out, nil
}
