package bytecode

import (
	"unicode"
	"unicode/utf8"

	"github.com/classweave/classweave/internal/model"
)

// capitalize upper-cases the first letter of a field name for JavaBean
// accessor naming. Single-letter and already-capitalized names fall out of
// the same rule ("x" -> "X", "URL" -> "URL").
func capitalize(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// getterName returns the JavaBean accessor name for a field:
// "is" prefix for primitive boolean, "get" otherwise.
func getterName(f model.FieldData) string {
	if f.Descriptor == "Z" {
		return "is" + capitalize(f.Name)
	}
	return "get" + capitalize(f.Name)
}

// setterName returns the JavaBean mutator name for a field.
func setterName(f model.FieldData) string {
	return "set" + capitalize(f.Name)
}

// boxFor returns the valueOf boxing call for a primitive descriptor.
func boxFor(descriptor string) (owner, signature string, ok bool) {
	switch descriptor {
	case "Z":
		return "java/lang/Boolean", "(Z)Ljava/lang/Boolean;", true
	case "B":
		return "java/lang/Byte", "(B)Ljava/lang/Byte;", true
	case "C":
		return "java/lang/Character", "(C)Ljava/lang/Character;", true
	case "S":
		return "java/lang/Short", "(S)Ljava/lang/Short;", true
	case "I":
		return "java/lang/Integer", "(I)Ljava/lang/Integer;", true
	case "J":
		return "java/lang/Long", "(J)Ljava/lang/Long;", true
	case "F":
		return "java/lang/Float", "(F)Ljava/lang/Float;", true
	case "D":
		return "java/lang/Double", "(D)Ljava/lang/Double;", true
	}
	return "", "", false
}

// appendDescriptor selects the StringBuilder.append overload for a field
// descriptor. byte and short promote to the int overload; references use
// the Object overload. This dispatch fixes the toString output format.
func appendDescriptor(descriptor string) string {
	switch descriptor {
	case "I", "B", "S":
		return "(I)Ljava/lang/StringBuilder;"
	case "C":
		return "(C)Ljava/lang/StringBuilder;"
	case "Z":
		return "(Z)Ljava/lang/StringBuilder;"
	case "J":
		return "(J)Ljava/lang/StringBuilder;"
	case "F":
		return "(F)Ljava/lang/StringBuilder;"
	case "D":
		return "(D)Ljava/lang/StringBuilder;"
	}
	return "(Ljava/lang/Object;)Ljava/lang/StringBuilder;"
}
