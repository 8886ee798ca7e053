/**
 * docviewer - Main Entry Point
 *
 * Headless client for the opiniowanie document service. Exposes the OCR
 * viewer operations as subcommands:
 *
 *   ocr-text       - fetch the canonical OCR text of a document
 *   ocr-progress   - poll an OCR job until it finishes
 *   run-ocr        - trigger an OCR job
 *   view           - load a document preview and render a page's OCR text
 *   select         - OCR a pixel-space region of one page
 *   update-text    - persist edited OCR text
 *   summarize      - generate an LLM quick summary (streamed, with fallback)
 *   opinion-status - one-shot batch OCR status for an opinion
 *   watch-upload   - follow batch OCR after an upload until done
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/stachuman/opiniowanie-serwis/internal/api"
	"github.com/stachuman/opiniowanie-serwis/internal/clipboard"
	"github.com/stachuman/opiniowanie-serwis/internal/config"
	"github.com/stachuman/opiniowanie-serwis/internal/editor"
	"github.com/stachuman/opiniowanie-serwis/internal/pages"
	"github.com/stachuman/opiniowanie-serwis/internal/preview"
	"github.com/stachuman/opiniowanie-serwis/internal/selection"
	"github.com/stachuman/opiniowanie-serwis/internal/ui"
	"github.com/stachuman/opiniowanie-serwis/internal/viewer"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env not found, using system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// Cancel everything on Ctrl-C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(cfg)

	cmd, args := os.Args[1], os.Args[2:]
	if err := app.run(ctx, cmd, args); err != nil {
		log.Fatalf("%s failed: %v", cmd, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: docviewer <command> [flags]")
	fmt.Fprintln(os.Stderr, "Commands: ocr-text, ocr-progress, run-ocr, view, select, update-text,")
	fmt.Fprintln(os.Stderr, "          summarize, opinion-status, watch-upload")
}

// app bundles the shared services every subcommand composes from.
type app struct {
	cfg    *config.Config
	client *api.Client
	alerts *ui.AlertManager
	modals *ui.ModalManager
	clip   *clipboard.Manager
}

func newApp(cfg *config.Config) *app {
	client := api.NewClient(cfg.BaseURL, api.Options{
		Timeout:        cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
		RetryBaseDelay: cfg.RetryBaseDelay,
	})

	alerts := ui.NewAlertManager(cfg.AlertDuration)
	alerts.Subscribe(func(a ui.Alert) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", strings.ToUpper(string(a.Type)), a.Message)
		for _, action := range a.Actions {
			fmt.Fprintf(os.Stderr, "         %s: %s\n", action.Text, action.URL)
		}
	})

	return &app{
		cfg:    cfg,
		client: client,
		alerts: alerts,
		modals: ui.NewModalManager(),
		clip:   clipboard.NewManager(),
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "ocr-text":
		return a.cmdOcrText(ctx, args)
	case "ocr-progress":
		return a.cmdOcrProgress(ctx, args)
	case "run-ocr":
		return a.cmdRunOcr(ctx, args)
	case "view":
		return a.cmdView(ctx, args)
	case "select":
		return a.cmdSelect(ctx, args)
	case "update-text":
		return a.cmdUpdateText(ctx, args)
	case "summarize":
		return a.cmdSummarize(ctx, args)
	case "opinion-status":
		return a.cmdOpinionStatus(ctx, args)
	case "watch-upload":
		return a.cmdWatchUpload(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) cmdOcrText(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ocr-text", flag.ExitOnError)
	docID := fs.String("doc", "", "document ID")
	copyOut := fs.Bool("copy", false, "copy the text to the clipboard")
	fs.Parse(args)
	if *docID == "" {
		return fmt.Errorf("missing -doc")
	}

	result, err := a.client.GetOcrText(ctx, *docID)
	if err != nil {
		return err
	}
	if !result.HasOcr {
		fmt.Println(viewer.NoOcrMessage)
		return nil
	}
	fmt.Println(result.Text)

	if *copyOut {
		if err := a.clip.CopyTextToClipboard(result.Text); err != nil {
			return err
		}
		a.alerts.ShowCopySuccess()
	}
	return nil
}

func (a *app) cmdOcrProgress(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ocr-progress", flag.ExitOnError)
	docID := fs.String("doc", "", "document ID")
	follow := fs.Bool("follow", false, "poll until the job finishes")
	fs.Parse(args)
	if *docID == "" {
		return fmt.Errorf("missing -doc")
	}

	if !*follow {
		progress, err := a.client.GetOcrProgress(ctx, *docID)
		if err != nil {
			return err
		}
		printProgress(*progress)
		return nil
	}

	detail := pages.NewDocumentDetailManager(
		pages.DocumentDetailConfig{DocID: *docID}, a.client, a.alerts)
	return detail.MonitorOcrProgress(ctx, a.cfg.OcrPollInterval, printProgress)
}

func printProgress(p api.OcrProgress) {
	fmt.Printf("status=%s progress=%.1f%%", p.Status, p.Progress)
	if p.TotalPages > 0 {
		fmt.Printf(" page=%d/%d", p.CurrentPage, p.TotalPages)
	}
	if p.Info != "" {
		fmt.Printf(" info=%q", p.Info)
	}
	fmt.Println()
}

func (a *app) cmdRunOcr(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run-ocr", flag.ExitOnError)
	docID := fs.String("doc", "", "document ID")
	fs.Parse(args)
	if *docID == "" {
		return fmt.Errorf("missing -doc")
	}

	detail := pages.NewDocumentDetailManager(
		pages.DocumentDetailConfig{DocID: *docID}, a.client, a.alerts)
	return detail.RunOcr(ctx)
}

// cmdView loads a document the way the viewer page does: preview bytes
// first, then the OCR text for the requested page.
func (a *app) cmdView(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	docID := fs.String("doc", "", "document ID")
	name := fs.String("name", "", "document file name, used for type detection")
	page := fs.Int("page", 1, "page to render")
	hasOcr := fs.Bool("has-ocr", true, "document has a full OCR result")
	parentID := fs.String("opinion", "", "parent opinion ID")
	fs.Parse(args)
	if *docID == "" {
		return fmt.Errorf("missing -doc")
	}

	loader := preview.NewLoader(a.client)
	res := loader.Load(ctx, *docID, *name, a.cfg.PdfScale, nil)
	if res.Err != nil {
		return res.Err
	}

	var source viewer.PageSource
	docType := selection.DocTypeImage
	switch {
	case res.Pdf != nil:
		source = res.Pdf
		docType = selection.DocTypePDF
	case res.Img != nil:
		source = res.Img
	default:
		return fmt.Errorf("document %s has no renderable preview", *docID)
	}

	ed := editor.NewTextEditor(editor.Config{
		DocID:        *docID,
		AutoSave:     a.cfg.AutoSave,
		SaveInterval: a.cfg.AutoSaveInterval,
		Client:       a.client,
		Alerts:       a.alerts,
		Clipboard:    a.clip,
	}, editor.Callbacks{})
	defer ed.Close()

	v := viewer.New(viewer.Config{
		DocID:              *docID,
		DocType:            docType,
		DocumentHasFullOcr: *hasOcr,
		ParentID:           *parentID,
		Scale:              a.cfg.PdfScale,
	}, viewer.Deps{
		Client: a.client,
		Pages:  source,
		Alerts: a.alerts,
		Modals: a.modals,
		Editor: ed,
	})
	defer v.Close()

	if err := v.Init(ctx); err != nil {
		return err
	}
	if err := v.RenderPage(ctx, *page); err != nil {
		return err
	}
	if err := v.LoadPageOcr(ctx, *page); err != nil {
		return err
	}

	d := v.Display()
	switch d.Kind {
	case viewer.DisplayText, viewer.DisplayMessage:
		fmt.Println(d.Text)
	case viewer.DisplayError:
		return fmt.Errorf("%s", d.Text)
	default:
		fmt.Println("(brak tekstu)")
	}
	return nil
}

// cmdSelect maps a pixel-space drag on a rendered page to a normalized
// region and OCRs it, the same path the viewer's rubber-band selection
// takes.
func (a *app) cmdSelect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("select", flag.ExitOnError)
	docID := fs.String("doc", "", "document ID")
	name := fs.String("name", "", "document file name, used for type detection")
	page := fs.Int("page", 1, "page number")
	x1 := fs.Float64("x1", 0, "drag start X in display pixels")
	y1 := fs.Float64("y1", 0, "drag start Y in display pixels")
	x2 := fs.Float64("x2", 0, "drag end X in display pixels")
	y2 := fs.Float64("y2", 0, "drag end Y in display pixels")
	displayW := fs.Float64("display-width", 0, "rendered element width in pixels")
	displayH := fs.Float64("display-height", 0, "rendered element height in pixels")
	fs.Parse(args)
	if *docID == "" {
		return fmt.Errorf("missing -doc")
	}

	loader := preview.NewLoader(a.client)
	res := loader.Load(ctx, *docID, *name, a.cfg.PdfScale, nil)
	if res.Err != nil {
		return res.Err
	}

	var (
		source  viewer.PageSource
		docType = selection.DocTypeImage
	)
	switch {
	case res.Pdf != nil:
		if *displayW > 0 && *displayH > 0 {
			res.Pdf.SetDisplaySize(*displayW, *displayH)
		}
		source = res.Pdf
		docType = selection.DocTypePDF
	case res.Img != nil:
		if *displayW > 0 && *displayH > 0 {
			res.Img.SetDisplaySize(*displayW, *displayH)
		}
		source = res.Img
	default:
		return fmt.Errorf("document %s has no renderable preview", *docID)
	}

	metrics, err := source.PageMetrics(*page)
	if err != nil {
		return err
	}

	start := selection.CanvasPoint(docType, *x1, *y1, metrics)
	end := selection.CanvasPoint(docType, *x2, *y2, metrics)
	rect, ok := selection.Compute(docType, start, end, metrics)
	if !ok {
		return fmt.Errorf("selection smaller than %.0f pixels, ignored", selection.MinSelectionPx)
	}

	result, err := a.client.OcrSelection(ctx, *docID, api.OcrSelectionRequest{
		Page:         *page,
		X1:           rect.X1,
		Y1:           rect.Y1,
		X2:           rect.X2,
		Y2:           rect.Y2,
		SkipPdfEmbed: true,
	})
	if err != nil {
		return err
	}
	fmt.Println(result.Text)
	return nil
}

func (a *app) cmdUpdateText(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update-text", flag.ExitOnError)
	docID := fs.String("doc", "", "document ID")
	file := fs.String("file", "-", "file with the new text, - for stdin")
	fs.Parse(args)
	if *docID == "" {
		return fmt.Errorf("missing -doc")
	}

	text, err := readInput(*file)
	if err != nil {
		return err
	}

	ed := editor.NewTextEditor(editor.Config{
		DocID:     *docID,
		Client:    a.client,
		Alerts:    a.alerts,
		Clipboard: a.clip,
	}, editor.Callbacks{})
	defer ed.Close()

	ed.EnterEditMode()
	ed.SetDraft(text)
	if !ed.SaveAndExit(ctx) {
		return fmt.Errorf("saving text for document %s failed", *docID)
	}
	return nil
}

func (a *app) cmdSummarize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	docID := fs.String("doc", "", "document ID")
	opinionID := fs.String("opinion", "", "opinion ID")
	instruction := fs.String("instruction", "", "custom instruction for the model")
	saveToNote := fs.Bool("save-note", false, "save the summary into the document note")
	noteMode := fs.String("note-mode", "append", "append or replace the note")
	fs.Parse(args)
	if *docID == "" {
		return fmt.Errorf("missing -doc")
	}

	opinion := pages.NewOpinionDetailManager(*opinionID, a.client, a.alerts, a.modals)
	var summary string
	opinion.OnSummaryResult = func(text, html string) {
		summary = text
	}

	if err := opinion.GenerateQuickSummary(ctx, *docID, api.SummaryOptions{
		Instruction: *instruction,
		SaveToNote:  *saveToNote,
		NoteMode:    *noteMode,
	}); err != nil {
		return err
	}
	fmt.Println(summary)
	return nil
}

func (a *app) cmdOpinionStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("opinion-status", flag.ExitOnError)
	opinionID := fs.String("opinion", "", "opinion ID")
	fs.Parse(args)
	if *opinionID == "" {
		return fmt.Errorf("missing -opinion")
	}

	status, err := a.client.GetOpinionOcrStatus(ctx, *opinionID)
	if err != nil {
		return err
	}
	fmt.Printf("done=%v completed=%d/%d pending=%d progress=%.1f%%\n",
		status.OcrDone, status.CompletedDocs, status.TotalDocs,
		status.PendingDocs, status.ProgressOverall)
	return nil
}

func (a *app) cmdWatchUpload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch-upload", flag.ExitOnError)
	opinionID := fs.String("opinion", "", "opinion ID")
	fs.Parse(args)
	if *opinionID == "" {
		return fmt.Errorf("missing -opinion")
	}

	watcher := pages.NewUploadDetailManager(pages.UploadDetailConfig{
		OpinionID:    *opinionID,
		PollInterval: a.cfg.OcrPollInterval,
		MaxAttempts:  a.cfg.OcrPollMaxAttempts,
	}, a.client, a.alerts)
	watcher.OnProgress = func(s api.OpinionOcrStatus) {
		fmt.Printf("completed=%d/%d progress=%.1f%%\n",
			s.CompletedDocs, s.TotalDocs, s.ProgressOverall)
	}
	watcher.OnNavigateToOpinion = func(id string) {
		fmt.Printf("-> opinia %s\n", id)
	}
	return watcher.WatchOcrStatus(ctx)
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
