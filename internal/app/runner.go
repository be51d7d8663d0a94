package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/agrireview/agrireview/internal/config"
	"github.com/agrireview/agrireview/internal/docx"
	"github.com/agrireview/agrireview/internal/domain"
	"github.com/agrireview/agrireview/internal/notify"
	"github.com/agrireview/agrireview/internal/report"
	"github.com/agrireview/agrireview/internal/review"
	"github.com/agrireview/agrireview/internal/scanner"
	"github.com/agrireview/agrireview/internal/session"
	"github.com/agrireview/agrireview/internal/util"
)

// minAnalyzableChars is the shortest extracted text worth reviewing.
// Anything below is treated as an empty or unreadable document.
const minAnalyzableChars = 50

// Reviewer produces a validated review for extracted document text.
type Reviewer interface {
	Review(ctx context.Context, text string) (*domain.ReviewResponse, error)
}

// Runner orchestrates the full review flow: extract, length gate, model
// review, report export, optional email.
type Runner struct {
	config    *config.Config
	logger    *log.Logger
	extractor *docx.Extractor
	scanner   *scanner.Scanner
	exporter  *report.Exporter
	session   *session.Session
	notify    *notify.Service

	reviewerMu sync.Mutex
	reviewer   Reviewer // initialized lazily unless injected
}

// Option configures a Runner.
type Option func(*Runner)

// WithReviewer injects a reviewer, bypassing lazy client construction.
func WithReviewer(rv Reviewer) Option {
	return func(r *Runner) {
		r.reviewer = rv
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new Runner instance
func NewRunner(cfg *config.Config, opts ...Option) (*Runner, error) {
	sess, err := session.New()
	if err != nil {
		return nil, err
	}

	r := &Runner{
		config:   cfg,
		logger:   log.New(os.Stdout, "[AgriReview] ", log.LstdFlags),
		exporter: report.NewExporter(cfg.Reports.OutputDir),
		session:  sess,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.extractor = docx.NewExtractor(r.logger)
	r.scanner = scanner.New(r.logger)

	return r, nil
}

// Session returns the runner's active review session.
func (r *Runner) Session() *session.Session {
	return r.session
}

// Exporter returns the report exporter.
func (r *Runner) Exporter() *report.Exporter {
	return r.exporter
}

// Run reviews a single .docx file, or every .docx under a directory.
func (r *Runner) Run(ctx context.Context, path string) error {
	startTime := time.Now()

	if err := r.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if util.DirExists(path) {
		if err := r.runBatch(ctx, path); err != nil {
			return err
		}
	} else {
		if err := r.ReviewFile(ctx, path); err != nil {
			return err
		}
	}

	r.log("Review complete in %s", time.Since(startTime).Round(time.Millisecond))
	return nil
}

// runBatch reviews every document under dir sequentially. A failing file is
// reported and skipped; the batch continues.
func (r *Runner) runBatch(ctx context.Context, dir string) error {
	r.log("Scanning %s for documents...", dir)
	docs, err := r.scanner.FindDocuments(dir)
	if err != nil {
		return fmt.Errorf("scanning documents: %w", err)
	}
	r.log("Found %d documents", len(docs))

	if len(docs) == 0 {
		r.logger.Printf("No .docx documents found under %s", dir)
		return nil
	}

	var failed int
	for _, doc := range docs {
		if err := r.ReviewFile(ctx, doc); err != nil {
			failed++
			r.logger.Printf("Review failed for %s: %v", doc, err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed review", failed, len(docs))
	}
	return nil
}

// ReviewFile runs the full pipeline for one file on disk and writes the
// report artifact.
func (r *Runner) ReviewFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	fileName := filepath.Base(path)
	resp, err := r.ReviewDocument(ctx, fileName, data)
	if err != nil {
		return err
	}

	reportPath, err := r.exporter.Write(resp, fileName)
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	r.log("Report saved to %s", reportPath)

	if r.config.Email.Enabled {
		if err := r.sendReport(ctx, fileName, resp); err != nil {
			return fmt.Errorf("sending email: %w", err)
		}
		r.log("Email sent successfully")
	}

	return nil
}

// ReviewDocument drives the session through the pipeline for an in-memory
// document and returns the validated review. All terminal failures land the
// session in the error state with a user-facing message.
func (r *Runner) ReviewDocument(ctx context.Context, fileName string, data []byte) (*domain.ReviewResponse, error) {
	gen, err := r.session.Select(fileName)
	if err != nil {
		return nil, err
	}

	r.log("Extracting text from %s...", fileName)
	text, err := r.extractor.Extract(fileName, data)
	if err != nil {
		r.fail(gen, err)
		return nil, err
	}

	if len(text) < minAnalyzableChars {
		err := domain.NewError(domain.KindEmptyDocument,
			"The document appears to be empty or unreadable.")
		r.fail(gen, err)
		return nil, err
	}

	if err := r.session.MarkExtracted(gen, text); err != nil {
		return nil, err
	}

	reviewer, err := r.getReviewer()
	if err != nil {
		r.fail(gen, err)
		return nil, err
	}

	r.log("Professor is reviewing %s...", fileName)
	resp, err := reviewer.Review(ctx, text)
	if err != nil {
		r.fail(gen, err)
		return nil, err
	}

	if err := r.session.Complete(gen, resp); err != nil {
		if errors.Is(err, session.ErrStaleGeneration) {
			r.log("Discarding stale review result for %s", fileName)
			return nil, err
		}
		return nil, err
	}

	r.log("Review of %s: %d comments (%d critical)",
		fileName, resp.TotalComments(), resp.CriticalCount())
	return resp, nil
}

// getReviewer returns the injected reviewer, or builds the real client on
// first use. Construction happens after extraction so a missing credential
// is reported against the session attempt that needed it.
func (r *Runner) getReviewer() (Reviewer, error) {
	r.reviewerMu.Lock()
	defer r.reviewerMu.Unlock()

	if r.reviewer == nil {
		r.log("Initializing review client...")
		client, err := review.NewClient(r.config.Review, r.logger)
		if err != nil {
			return nil, err
		}
		r.reviewer = client
	}
	return r.reviewer, nil
}

// fail moves the session to the error state, tolerating superseded runs.
func (r *Runner) fail(gen uint64, err error) {
	if ferr := r.session.Fail(gen, err.Error()); ferr != nil && !errors.Is(ferr, session.ErrStaleGeneration) {
		r.logger.Printf("Warning: could not record failure: %v", ferr)
	}
}

func (r *Runner) sendReport(ctx context.Context, fileName string, resp *domain.ReviewResponse) error {
	if r.notify == nil {
		notifier, err := notify.NewService(r.config.Email, r.logger)
		if err != nil {
			return err
		}
		r.notify = notifier
	}

	body := r.exporter.Format(resp, fileName, time.Now())
	return r.notify.SendReport(ctx, fileName, resp, body)
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.config.Verbose {
		r.logger.Printf(format, args...)
	}
}
