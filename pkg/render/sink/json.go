package sink

import "github.com/matzehuels/starsky/pkg/sky"

// RenderJSON exports the sky document.
func RenderJSON(s *sky.Sky) ([]byte, error) {
	return sky.Marshal(s)
}
