package hooks

import (
	"github.com/lawnchairsociety/gameconsole/internal/config"
	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/logger"
)

// Install registers the console-controlled overrides on points. Each rule
// reads features at query time, so toggling a flag takes effect on the
// next query. The cursor is re-evaluated whenever the console opens or
// closes.
func Install(points *Points, features *config.Features, c *console.Console) {
	points.Placement.Register(func(Placement) Decision {
		if features.BuildAnywhere {
			return Allow
		}
		return Pass
	})

	points.Support.Register(func(Support) Decision {
		if features.NoStructuralSupport {
			return Allow
		}
		return Pass
	})

	points.Stamina.Register(func(StaminaUse) Decision {
		if features.NoStamina {
			return Allow
		}
		return Pass
	})

	points.Cursor.Register(func(Cursor) Decision {
		if features.FreeCursor {
			return Allow
		}
		return Pass
	})

	if c != nil {
		c.OnVisibilityChange(func(visible bool) {
			free := points.RefreshCursor(visible)
			logger.Debug("Cursor re-evaluated", "console_visible", visible, "free", free)
		})
	}
}
