package fabric

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type mainClassKind int

const (
	mainClassUnset mainClassKind = iota
	mainClassScalar
	mainClassPerSide
)

// MainClass is the launcherMeta.mainClass field. The service serves either a
// single class name or an object keyed by side ("client", "server").
type MainClass struct {
	kind    mainClassKind
	scalar  string
	perSide map[string]string
}

func NewScalarMainClass(class string) MainClass {
	return MainClass{kind: mainClassScalar, scalar: class}
}

func NewPerSideMainClass(classes map[string]string) MainClass {
	copied := make(map[string]string, len(classes))
	for side, class := range classes {
		copied[side] = class
	}
	return MainClass{kind: mainClassPerSide, perSide: copied}
}

func (m MainClass) IsScalar() bool {
	return m.kind == mainClassScalar
}

func (m MainClass) IsPerSide() bool {
	return m.kind == mainClassPerSide
}

// Scalar returns the single class name and whether the value was in scalar form.
func (m MainClass) Scalar() (string, bool) {
	return m.scalar, m.kind == mainClassScalar
}

// ForSide looks the side up in the per-side form.
func (m MainClass) ForSide(side string) (string, bool) {
	if m.kind != mainClassPerSide {
		return "", false
	}
	class, ok := m.perSide[side]
	return class, ok
}

func (m *MainClass) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*m = MainClass{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var class string
		if err := json.Unmarshal(trimmed, &class); err != nil {
			return err
		}
		*m = NewScalarMainClass(class)
		return nil
	case '{':
		raw := map[string]json.RawMessage{}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		classes := make(map[string]string, len(raw))
		for side, value := range raw {
			var class string
			// non-string entries are treated as absent
			if err := json.Unmarshal(value, &class); err != nil {
				continue
			}
			classes[side] = class
		}
		*m = MainClass{kind: mainClassPerSide, perSide: classes}
		return nil
	}

	return fmt.Errorf("mainClass must be a string or an object, got %s", string(trimmed))
}

func (m MainClass) MarshalJSON() ([]byte, error) {
	switch m.kind {
	case mainClassScalar:
		return json.Marshal(m.scalar)
	case mainClassPerSide:
		return json.Marshal(m.perSide)
	default:
		return []byte("null"), nil
	}
}
