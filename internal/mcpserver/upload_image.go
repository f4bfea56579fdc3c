package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	maxImageSize = 10 << 20 // 10 MB
	imageDir     = "images"
)

// imageFormat is one accepted image type. sniff reports whether data
// really is that type.
type imageFormat struct {
	ext   string
	mime  string
	sniff func(data []byte) bool
}

var imageFormats = []imageFormat{
	{".png", "image/png", sniffMIME("image/png")},
	{".jpg", "image/jpeg", sniffMIME("image/jpeg")},
	{".gif", "image/gif", sniffMIME("image/gif")},
	{".webp", "image/webp", sniffMIME("image/webp")},
	{".svg", "image/svg+xml", sniffSVG},
}

var (
	errBlockedAddress = errors.New("blocked address")
	safeFilenameRe    = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

func sniffMIME(mime string) func([]byte) bool {
	return func(data []byte) bool {
		return strings.HasPrefix(http.DetectContentType(data), mime)
	}
}

func sniffSVG(data []byte) bool {
	return bytes.Contains(data[:min(len(data), 1024)], []byte("<svg"))
}

func formatByExt(ext string) (imageFormat, bool) {
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	for _, f := range imageFormats {
		if f.ext == ext {
			return f, true
		}
	}
	return imageFormat{}, false
}

func formatByMIME(contentType string) (imageFormat, bool) {
	mime := strings.TrimSpace(strings.Split(contentType, ";")[0])
	for _, f := range imageFormats {
		if f.mime == mime {
			return f, true
		}
	}
	return imageFormat{}, false
}

type uploadResult struct {
	SavedPath    string `json:"savedPath"`
	ImagePath    string `json:"imagePath"`
	GalleryEntry string `json:"galleryEntry"`
}

// uploadImage stores an image at <folder>/images/<name> in the source tree.
// The returned image path is relative to folder, which is how gallery
// front matter and include_paths refer to it.
func (s *Server) uploadImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename, _ := req.RequireString("filename")
	folder, _ := req.RequireString("folder")
	folder = strings.Trim(path.Clean("/"+folder), "/")

	var data []byte
	var declared imageFormat
	if strings.HasPrefix(rawURL, "data:") {
		data, declared, err = decodeDataURI(rawURL)
	} else {
		data, declared, err = fetchImage(ctx, rawURL)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if filename == "" {
		filename = nameFromURL(rawURL, declared)
	}
	filename = sanitizeFilename(filename)
	ext := strings.ToLower(path.Ext(filename))
	format, ok := formatByExt(ext)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported image type %q (allowed: png, jpg, jpeg, gif, webp, svg)", ext)), nil
	}
	if !format.sniff(data) {
		return mcp.NewToolResultError(fmt.Sprintf("content is not a %s image", strings.TrimPrefix(format.ext, "."))), nil
	}

	imagePath := path.Join(imageDir, filename)
	savePath := path.Join(folder, imagePath)
	if s.source.Exists(savePath) {
		return mcp.NewToolResultError(fmt.Sprintf("image already exists: %s", savePath)), nil
	}
	if err := s.source.Write(savePath, data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save image: %v", err)), nil
	}

	out, _ := json.Marshal(uploadResult{
		SavedPath:    savePath,
		ImagePath:    imagePath,
		GalleryEntry: fmt.Sprintf("- image_path: %s\n  alt: %s", imagePath, altText(filename)),
	})
	return mcp.NewToolResultText(string(out)), nil
}

// decodeDataURI accepts data:<image mime>;base64,<payload>.
func decodeDataURI(uri string) ([]byte, imageFormat, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, imageFormat{}, errors.New("data URI must be of the form data:<mime>;base64,<payload>")
	}
	format, ok := formatByMIME(strings.TrimSuffix(meta, ";base64"))
	if !ok {
		return nil, imageFormat{}, fmt.Errorf("unsupported data URI type %q", meta)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxImageSize {
		return nil, imageFormat{}, fmt.Errorf("image too large (max %d bytes)", maxImageSize)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, imageFormat{}, fmt.Errorf("decode data URI: %w", err)
		}
	}
	return data, format, nil
}

// imageClient refuses to connect to loopback, link-local (which covers
// cloud metadata endpoints) and unspecified addresses. The check runs on
// the address actually dialed, so redirects and DNS answers cannot get
// around it.
var imageClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second,
			Control: func(_, address string, _ syscall.RawConn) error {
				host, _, err := net.SplitHostPort(address)
				if err != nil {
					return err
				}
				if ip := net.ParseIP(host); ip == nil || blockedIP(ip) {
					return fmt.Errorf("%w: %s", errBlockedAddress, host)
				}
				return nil
			},
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	CheckRedirect: func(_ *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return errors.New("too many redirects")
		}
		return nil
	},
}

func blockedIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

// fetchImage downloads an http(s) image. The format comes from the
// Content-Type header and may be empty.
func fetchImage(ctx context.Context, rawURL string) ([]byte, imageFormat, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, imageFormat{}, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, imageFormat{}, fmt.Errorf("unsupported scheme %q (only http and https)", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, imageFormat{}, err
	}
	resp, err := imageClient.Do(req)
	if err != nil {
		return nil, imageFormat{}, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, imageFormat{}, fmt.Errorf("download: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, imageFormat{}, fmt.Errorf("download: %w", err)
	}
	if len(data) > maxImageSize {
		return nil, imageFormat{}, fmt.Errorf("image too large (max %d bytes)", maxImageSize)
	}
	format, _ := formatByMIME(resp.Header.Get("Content-Type"))
	return data, format, nil
}

// nameFromURL uses the last path segment of an http(s) URL when it has an
// extension, and a random name with the declared format's extension otherwise.
func nameFromURL(rawURL string, declared imageFormat) string {
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "data" {
		if base := path.Base(u.Path); path.Ext(base) != "" {
			return base
		}
	}
	ext := declared.ext
	if ext == "" {
		ext = ".bin"
	}
	return uuid.NewString() + ext
}

// sanitizeFilename strips directories and replaces unsafe characters.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = safeFilenameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "/" {
		return uuid.NewString()
	}
	return name
}

// altText turns "my_cat-photo.png" into "my cat photo".
func altText(filename string) string {
	stem := strings.TrimSuffix(filename, path.Ext(filename))
	return strings.Join(strings.FieldsFunc(stem, func(r rune) bool { return r == '_' || r == '-' }), " ")
}
