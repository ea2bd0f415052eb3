package classfile

import "fmt"

// SlotWidth returns the number of local-variable slots a value of the given
// field descriptor occupies: 2 for long and double, 1 for everything else.
func SlotWidth(descriptor string) int {
	switch descriptor {
	case "J", "D":
		return 2
	}
	return 1
}

// IsPrimitive reports whether the descriptor names a primitive type.
func IsPrimitive(descriptor string) bool {
	switch descriptor {
	case "B", "C", "D", "F", "I", "J", "S", "Z":
		return true
	}
	return false
}

// MethodDescriptor builds a method descriptor from parameter and return descriptors.
func MethodDescriptor(params []string, ret string) string {
	d := "("
	for _, p := range params {
		d += p
	}
	return d + ")" + ret
}

// ParameterDescriptors splits a method descriptor into its parameter
// field descriptors: "(ILjava/lang/String;[J)V" -> ["I", "Ljava/lang/String;", "[J"].
func ParameterDescriptors(methodDescriptor string) ([]string, error) {
	if len(methodDescriptor) < 2 || methodDescriptor[0] != '(' {
		return nil, fmt.Errorf("malformed method descriptor %q", methodDescriptor)
	}
	var params []string
	i := 1
	for i < len(methodDescriptor) && methodDescriptor[i] != ')' {
		start := i
		for methodDescriptor[i] == '[' {
			i++
			if i >= len(methodDescriptor) {
				return nil, fmt.Errorf("malformed method descriptor %q", methodDescriptor)
			}
		}
		switch methodDescriptor[i] {
		case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
			i++
		case 'L':
			for i < len(methodDescriptor) && methodDescriptor[i] != ';' {
				i++
			}
			if i >= len(methodDescriptor) {
				return nil, fmt.Errorf("unterminated reference type in %q", methodDescriptor)
			}
			i++
		default:
			return nil, fmt.Errorf("unknown type character %q in %q", methodDescriptor[i], methodDescriptor)
		}
		params = append(params, methodDescriptor[start:i])
	}
	if i >= len(methodDescriptor) || methodDescriptor[i] != ')' {
		return nil, fmt.Errorf("malformed method descriptor %q", methodDescriptor)
	}
	return params, nil
}
