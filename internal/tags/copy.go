package tags

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
)

// Copy reads the full ID3v2 tag set from originalPath and writes it onto
// newPath, replacing any frames newPath already has.
func Copy(originalPath, newPath string) error {
	original, err := id3v2.Open(originalPath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("read tags from %s: %w", originalPath, err)
	}
	defer original.Close()

	target, err := id3v2.Open(newPath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tag target %s: %w", newPath, err)
	}
	defer target.Close()

	target.DeleteAllFrames()
	target.SetVersion(original.Version())
	target.SetDefaultEncoding(original.DefaultEncoding())
	for id, frames := range original.AllFrames() {
		for _, frame := range frames {
			target.AddFrame(id, frame)
		}
	}

	if err := target.Save(); err != nil {
		return fmt.Errorf("write tags to %s: %w", newPath, err)
	}
	return nil
}

// Count reports how many frames the file at path carries. Useful for
// summaries and tests; a file without a tag reports zero.
func Count(path string) (int, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return 0, fmt.Errorf("read tags from %s: %w", path, err)
	}
	defer tag.Close()
	return tag.Count(), nil
}
