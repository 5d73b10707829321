package commands

import "fmt"

type Kind uint8

const (
	Void Kind = iota + 1
	Read
	Write
	QualifiedRead
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Read:
		return "read"
	case Write:
		return "write"
	case QualifiedRead:
		return "qualified-read"
	}
	return fmt.Sprintf("kind(%d)", k)
}

func (k Kind) HasArgument() bool {
	return k == Write || k == QualifiedRead
}

func (k Kind) HasResult() bool {
	return k == Read || k == QualifiedRead
}

func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{Void, Read, Write, QualifiedRead} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown command kind: %s", s)
}
