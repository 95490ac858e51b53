package wire

import (
	"fmt"

	"github.com/Preethi0409/canvas/internal/common"
)

func errInvalid(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, msg)
}
