package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNameCollision is matched by every NameCollisionError through errors.Is
var ErrNameCollision = errors.New("name collision")

// NameCollisionError is returned when a split would overwrite existing columns
type NameCollisionError struct {
	Names []string
}

// Error implements the error interface
func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("columns already present in table: [%s]; rename or drop them before splitting",
		strings.Join(e.Names, ", "))
}

// Is reports ErrNameCollision as the sentinel for this error
func (e *NameCollisionError) Is(target error) bool {
	return target == ErrNameCollision
}
