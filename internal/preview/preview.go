/**
 * Document preview
 *
 * Fetches a document's preview bytes and exposes the page geometry the
 * viewer needs: page count plus intrinsic and displayed dimensions per
 * page. PDFs are parsed with ledongthuc/pdf (page count, media box);
 * images are probed with image.DecodeConfig, with the extra formats from
 * golang.org/x/image registered.
 *
 * Load completion is a race between the parse finishing and a fixed
 * backstop timeout; whichever fires first wins and the finish action runs
 * exactly once.
 */

package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ledongthuc/pdf"

	// Extra image formats beyond the stdlib decoders.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/stachuman/opiniowanie-serwis/internal/logging"
	"github.com/stachuman/opiniowanie-serwis/internal/selection"
)

// DocType classifies a document for preview purposes.
type DocType string

const (
	TypePDF     DocType = "pdf"
	TypeImage   DocType = "image"
	TypeWord    DocType = "word"
	TypeText    DocType = "text"
	TypeUnknown DocType = "unknown"
)

// DetectType classifies a document by its file name.
func DetectType(name string) DocType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return TypePDF
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return TypeImage
	case ".doc", ".docx", ".odt", ".rtf":
		return TypeWord
	case ".txt", ".md", ".csv":
		return TypeText
	default:
		return TypeUnknown
	}
}

// defaultMediaBox is the US Letter fallback for pages without a readable
// media box.
var defaultMediaBox = [2]float64{612, 792}

// PdfDocument implements viewer.PageSource over parsed PDF bytes.
type PdfDocument struct {
	reader   *pdf.Reader
	numPages int
	scale    float64

	mu         sync.Mutex
	displayW   float64
	displayH   float64
	hasDisplay bool
}

// NewPdfDocument parses PDF bytes. Scale plays the role the render scale
// played in the canvas viewer: intrinsic dimensions are media box × scale.
func NewPdfDocument(data []byte, scale float64) (*PdfDocument, error) {
	if scale <= 0 {
		scale = 1.5
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	return &PdfDocument{
		reader:   reader,
		numPages: reader.NumPage(),
		scale:    scale,
	}, nil
}

// PageCount returns the number of pages.
func (d *PdfDocument) PageCount() int {
	return d.numPages
}

// SetDisplaySize records the on-screen layout size used for CSS-vs-canvas
// compensation. Without it pages display at intrinsic size.
func (d *PdfDocument) SetDisplaySize(w, h float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.displayW, d.displayH = w, h
	d.hasDisplay = w > 0 && h > 0
}

// PageMetrics returns the canvas metrics for one page.
func (d *PdfDocument) PageMetrics(num int) (selection.CanvasMetrics, error) {
	if num < 1 || num > d.numPages {
		return selection.CanvasMetrics{}, fmt.Errorf("page %d out of range 1..%d", num, d.numPages)
	}

	w, h := defaultMediaBox[0], defaultMediaBox[1]
	page := d.reader.Page(num)
	if !page.V.IsNull() {
		if mb := page.V.Key("MediaBox"); mb.Len() == 4 {
			x1, y1 := mb.Index(0).Float64(), mb.Index(1).Float64()
			x2, y2 := mb.Index(2).Float64(), mb.Index(3).Float64()
			if x2 > x1 && y2 > y1 {
				w, h = x2-x1, y2-y1
			}
		}
	}

	m := selection.CanvasMetrics{
		IntrinsicWidth:  w * d.scale,
		IntrinsicHeight: h * d.scale,
	}

	d.mu.Lock()
	if d.hasDisplay {
		m.DisplayWidth, m.DisplayHeight = d.displayW, d.displayH
	} else {
		m.DisplayWidth, m.DisplayHeight = m.IntrinsicWidth, m.IntrinsicHeight
	}
	d.mu.Unlock()

	return m, nil
}

// ImageDocument implements viewer.PageSource for a single image.
type ImageDocument struct {
	width  int
	height int
	format string

	mu         sync.Mutex
	displayW   float64
	displayH   float64
	hasDisplay bool
}

// NewImageDocument probes image bytes for their intrinsic dimensions.
func NewImageDocument(data []byte) (*ImageDocument, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return &ImageDocument{width: cfg.Width, height: cfg.Height, format: format}, nil
}

// PageCount is always 1 for an image.
func (d *ImageDocument) PageCount() int { return 1 }

// Format returns the detected image format name.
func (d *ImageDocument) Format() string { return d.format }

// SetDisplaySize records the on-screen size of the image element.
func (d *ImageDocument) SetDisplaySize(w, h float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.displayW, d.displayH = w, h
	d.hasDisplay = w > 0 && h > 0
}

// PageMetrics returns metrics for the single page. Image selections are
// normalized by the displayed box, so the display defaults to the intrinsic
// size until SetDisplaySize is called.
func (d *ImageDocument) PageMetrics(num int) (selection.CanvasMetrics, error) {
	if num != 1 {
		return selection.CanvasMetrics{}, fmt.Errorf("image has a single page, got %d", num)
	}
	m := selection.CanvasMetrics{
		IntrinsicWidth:  float64(d.width),
		IntrinsicHeight: float64(d.height),
	}
	d.mu.Lock()
	if d.hasDisplay {
		m.DisplayWidth, m.DisplayHeight = d.displayW, d.displayH
	} else {
		m.DisplayWidth, m.DisplayHeight = m.IntrinsicWidth, m.IntrinsicHeight
	}
	d.mu.Unlock()
	return m, nil
}

// PreviewFetcher is the slice of the API client the loader needs.
type PreviewFetcher interface {
	Preview(ctx context.Context, docID string) ([]byte, error)
}

// LoadResult reports a finished preview load.
type LoadResult struct {
	DocID    string
	Type     DocType
	Pdf      *PdfDocument
	Img      *ImageDocument
	TimedOut bool // true when the backstop fired before the parse finished
	Err      error
}

// Loader fetches preview bytes and races the parse against a backstop
// timeout.
type Loader struct {
	client PreviewFetcher
	logger *logging.Logger

	// Backstop delays for slow parses; mirrors the historical 3s/5s values.
	PdfBackstop   time.Duration
	ImageBackstop time.Duration
}

// NewLoader creates a preview loader.
func NewLoader(client PreviewFetcher) *Loader {
	return &Loader{
		client:        client,
		logger:        logging.NewLogger("DocumentPreview"),
		PdfBackstop:   3 * time.Second,
		ImageBackstop: 5 * time.Second,
	}
}

// Load fetches and parses the preview for a document. onFinish runs exactly
// once, whether the parse completes or the backstop fires first; a late
// parse result after a timeout is still folded into the returned LoadResult
// but does not trigger onFinish again.
func (l *Loader) Load(ctx context.Context, docID, name string, scale float64, onFinish func(LoadResult)) LoadResult {
	docType := DetectType(name)

	data, err := l.client.Preview(ctx, docID)
	if err != nil {
		res := LoadResult{DocID: docID, Type: docType, Err: err}
		if onFinish != nil {
			onFinish(res)
		}
		return res
	}

	backstop := l.ImageBackstop
	if docType == TypePDF {
		backstop = l.PdfBackstop
	}

	var once sync.Once
	finish := func(res LoadResult) {
		once.Do(func() {
			if onFinish != nil {
				onFinish(res)
			}
		})
	}

	done := make(chan LoadResult, 1)
	go func() {
		done <- l.parse(docID, docType, data, scale)
	}()

	timer := time.NewTimer(backstop)
	defer timer.Stop()

	select {
	case res := <-done:
		finish(res)
		return res
	case <-timer.C:
		l.logger.Warn("Preview parse backstop fired", "docId", docID, "type", docType)
		res := LoadResult{DocID: docID, Type: docType, TimedOut: true}
		finish(res)
		// Fold in the parse when it eventually lands; onFinish stays once.
		select {
		case parsed := <-done:
			parsed.TimedOut = true
			return parsed
		case <-ctx.Done():
			res.Err = ctx.Err()
			return res
		}
	case <-ctx.Done():
		res := LoadResult{DocID: docID, Type: docType, Err: ctx.Err()}
		finish(res)
		return res
	}
}

func (l *Loader) parse(docID string, docType DocType, data []byte, scale float64) LoadResult {
	res := LoadResult{DocID: docID, Type: docType}
	switch docType {
	case TypePDF:
		doc, err := NewPdfDocument(data, scale)
		res.Pdf, res.Err = doc, err
	case TypeImage:
		img, err := NewImageDocument(data)
		res.Img, res.Err = img, err
	default:
		// Word/text/unknown previews are server-rendered HTML; nothing to
		// parse locally.
	}
	return res
}
