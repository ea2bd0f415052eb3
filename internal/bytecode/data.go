package bytecode

import "github.com/classweave/classweave/internal/model"

// DataHandler bundles Getter, Setter, ToString and EqualsAndHashCode into
// one trigger. Each delegate re-checks member existence, so delegate order
// only affects log ordering.
type DataHandler struct{}

func (DataHandler) Annotation() string { return "Data" }

func (h DataHandler) Apply(g *Gen, info *model.ClassInfo) error {
	for _, d := range []Handler{
		GetterHandler{},
		SetterHandler{},
		ToStringHandler{},
		EqualsAndHashCodeHandler{},
	} {
		if err := d.Apply(g, info); err != nil {
			return err
		}
	}
	return nil
}

// ValueHandler is the immutable-class bundle: accessors without mutators,
// plus toString, equals/hashCode and the all-args constructor.
type ValueHandler struct{}

func (ValueHandler) Annotation() string { return "Value" }

func (h ValueHandler) Apply(g *Gen, info *model.ClassInfo) error {
	for _, d := range []Handler{
		GetterHandler{},
		ToStringHandler{},
		EqualsAndHashCodeHandler{},
		AllArgsConstructorHandler{},
	} {
		if err := d.Apply(g, info); err != nil {
			return err
		}
	}
	return nil
}
