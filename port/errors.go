package port

import "fmt"

var errAlreadyFrozen = fmt.Errorf("port: registry is frozen, cannot add more ports")

func errDuplicateName(name string) error {
	return fmt.Errorf("port: duplicate port name %q", name)
}
