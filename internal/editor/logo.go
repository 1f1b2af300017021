package editor

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ajramos/formsmith/internal/schema"
)

// MaxLogoBytes bounds the size of an uploaded logo image
const MaxLogoBytes = 2 << 20

// LoadLogo reads the image at path and returns it as a data URL.
func LoadLogo(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open logo: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(readerWithContext(ctx, f), MaxLogoBytes+1))
	if err != nil {
		return "", fmt.Errorf("read logo: %w", err)
	}
	if len(data) > MaxLogoBytes {
		return "", newError("logo", -1, "logo", fmt.Errorf("%w: image larger than %d bytes", ErrInvalidFieldValue, MaxLogoBytes))
	}
	return DataURL(data)
}

// DataURL encodes an image as a base64 data URL. Content that is not an
// image is rejected.
func DataURL(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", newError("logo", -1, "logo", fmt.Errorf("%w: %s is not an image", ErrInvalidFieldValue, mt.String()))
	}
	// drop parameters such as charset
	mime, _, _ := strings.Cut(mt.String(), ";")
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// SetLogo stores image data as the theme logo. Empty data removes the logo.
func SetLogo(theme schema.ThemeConfig, data []byte) (schema.ThemeConfig, error) {
	url := ""
	if len(data) > 0 {
		var err error
		if url, err = DataURL(data); err != nil {
			return theme, err
		}
	}
	return SetAttribute(theme, "logo", url)
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
