package vision

import (
	"bytes"
	"fmt"
	"image"

	"subsea-inspector/internal/domain/entity"
)

// MaxImagePixels предел площади кадра. Заголовок читается до полного
// декодирования, так что маленький файл с завышенными размерами не раздует память.
const MaxImagePixels = 40_000_000

// imageConfig читает размеры из заголовка и проверяет их до декодирования пикселей.
func imageConfig(imageData []byte) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return image.Config{}, entity.NewValidationError("image", "cannot decode: "+err.Error())
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, entity.NewValidationError("image", "empty dimensions")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return image.Config{}, entity.NewValidationError("image",
			fmt.Sprintf("too large (%dx%d), limit is %d pixels", cfg.Width, cfg.Height, MaxImagePixels))
	}
	return cfg, nil
}
