package images

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
)

// russianKeywords marks imagery as plausibly Russian. Latin and
// Cyrillic spellings both count because provider metadata mixes them.
var russianKeywords = []string{
	"russia", "russian", "россия", "русский",
	"siberia", "сибирь", "ural", "урал",
	"moscow", "москва", "golden ring",
	"orthodox", "православный", "церковь",
	"birch forest", "берёза", "берёзовый лес",
	"wooden architecture", "изба", "деревянная архитектура",
	"volga", "волга", "st petersburg", "санкт-петербург",
	"kremlin", "кремль", "onion dome", "луковичный купол",
	"matryoshka", "матрёшка", "samovar", "самовар",
	"khokhloma", "хохлома", "gzhel", "гжель", "palekh", "палех",
}

// forbiddenKeywords reject imagery from regions stock searches keep
// confusing with Russia.
var forbiddenKeywords = []string{
	"spain", "spanish", "casa", "mediterranean",
	"polish", "poland", "polska",
	"italy", "italian", "italian architecture",
	"france", "french", "paris",
	"latin america", "south america",
	"asia", "asian", "china", "japan",
	"africa", "african",
}

// CulturallyRelevant reports whether the photo's metadata text reads as
// Russian content. Forbidden markers veto before Russian markers count.
func CulturallyRelevant(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range forbiddenKeywords {
		if strings.Contains(lowered, kw) {
			return false
		}
	}
	for _, kw := range russianKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// ValidateFile checks a downloaded image on disk: minimum byte size,
// decodable header, minimum dimensions. Returns the decoded dimensions.
func ValidateFile(path string, minBytes int64, minWidth, minHeight int) (width, height int, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, fmt.Errorf("stat image: %w", err)
	}
	if info.Size() < minBytes {
		return 0, 0, fmt.Errorf("image %s is %d bytes, need at least %d", path, info.Size(), minBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image %s: %w", path, err)
	}
	if cfg.Width < minWidth || cfg.Height < minHeight {
		return 0, 0, fmt.Errorf("image %s is %dx%d, need at least %dx%d",
			path, cfg.Width, cfg.Height, minWidth, minHeight)
	}
	return cfg.Width, cfg.Height, nil
}
