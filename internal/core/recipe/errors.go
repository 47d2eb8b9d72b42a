package recipe

import (
	"fmt"

	"meal-planner/internal/pkg/common"
)

func errMissing(field string) error {
	return common.NewValidationError(fmt.Sprintf("recipe is missing %s", field))
}
