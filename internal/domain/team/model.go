package team

import "fmt"

// Team is a canonical club identity that aliases resolve to.
type Team struct {
	ID          string
	DisplayName string
	LogoURL     string
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.DisplayName == "" {
		return fmt.Errorf("team display name is required")
	}

	return nil
}
