package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quill/internal/config"
	"quill/internal/diag"
	"quill/internal/lexer"
	"quill/internal/observ"
	"quill/internal/source"
	"quill/internal/token"
	"quill/internal/trace"
)

// TokenizeResult is the outcome of tokenizing one template.
type TokenizeResult struct {
	FileSet  *source.FileSet
	File     *source.File
	Results  []lexer.Result // ends with EOF unless Err is set
	Bag      *diag.Bag
	Chain    []string
	Leftover lexer.Leftover
	Timing   *observ.Report
	Cached   bool
	// Err is a chain defect (lexer.ErrChainExhausted, lexer.ErrNoProgress...).
	// Results then hold the tokens produced before it.
	Err error
}

// Tokens returns the bare tokens of r.
func (r *TokenizeResult) Tokens() []token.Token {
	out := make([]token.Token, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Token
	}
	return out
}

// Tokenize loads path and tokenizes it. The returned error covers loading
// and configuration only; chain defects land in TokenizeResult.Err and in
// the bag.
func Tokenize(ctx context.Context, path string, opts Options) (*TokenizeResult, error) {
	ctx, run := beginRun(ctx, "tokenize")
	defer run.End(path)

	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
		return nil, err
	}
	cfg := opts.config()
	return tokenizeFile(ctx, fs, fs.Get(fileID), opts, Fingerprint(cfg))
}

// TokenizeSource tokenizes content held in memory under name.
func TokenizeSource(ctx context.Context, name string, content []byte, opts Options) (*TokenizeResult, error) {
	ctx, run := beginRun(ctx, "tokenize")
	defer run.End(name)

	fs := source.NewFileSet()
	fileID := fs.AddVirtual(name, content)
	return tokenizeFile(ctx, fs, fs.Get(fileID), opts, Fingerprint(opts.config()))
}

// beginRun opens the driver-level span; every run gets its own ID so
// interleaved traces of parallel invocations can be told apart.
func beginRun(ctx context.Context, name string) (context.Context, *trace.Span) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, name, trace.CurrentSpan(ctx)).
		WithExtra("run_id", uuid.New().String())
	return trace.WithSpan(ctx, span), span
}

func tokenizeFile(ctx context.Context, fs *source.FileSet, file *source.File, opts Options, fp Digest) (*TokenizeResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "tokenize_file", trace.CurrentSpan(ctx)).
		WithExtra("path", file.Path)
	started := time.Now()

	cfg := opts.config()
	timer := observ.NewTimer()
	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	res := &TokenizeResult{
		FileSet: fs,
		File:    file,
		Bag:     bag,
		Chain:   chainNames(cfg),
	}
	key := cacheKey(file, fp)

	if opts.Cache != nil && fromCache(opts, file, key, timer, res) {
		span.WithExtra("cache", "hit")
	} else {
		idx := timer.Begin("tokenize")
		emit(opts.Progress, Event{File: file.Path, Stage: StageTokenize, Status: StatusWorking})

		lo := opts.lexerOptions()
		lo.Reporter = reporter
		lo.Tracer = tracer
		tz, err := lexer.New(file, lo)
		if err != nil {
			timer.End(idx, "config")
			span.End("config error")
			emit(opts.Progress, Event{File: file.Path, Stage: StageTokenize, Status: StatusError, Err: err})
			return nil, err
		}
		res.Chain = tz.Chain()
		res.Results, res.Err = tz.Collect()
		if res.Err != nil {
			at := source.Span{File: file.ID}
			var ex *lexer.ExhaustedError
			if errors.As(res.Err, &ex) {
				at.Start, at.End = ex.Offset, ex.Offset
			}
			diag.ReportError(reporter, diag.LexChainExhausted, at, res.Err.Error()).Emit()
		} else {
			eof, _ := tz.Next() //nolint:errcheck // EOF never fails after a clean drain
			res.Results = append(res.Results, eof)
			res.Leftover = tz.Leftover()
			reportLeftover(reporter, eof.Token.Span, res.Leftover)
		}
		timer.End(idx, fmt.Sprintf("%d tokens, %d fall-through", tz.Emitted(), tz.GuardFires()))

		if opts.Cache != nil && res.Err == nil {
			toCache(opts, file, key, timer, res)
		}
	}

	if opts.Timings {
		report := timer.Report()
		res.Timing = &report
		appendTimingDiagnostic(bag, timingPayload{
			Kind:    "tokenize",
			Path:    file.Path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}

	ev := Event{
		File:    file.Path,
		Stage:   StageTokenize,
		Status:  StatusDone,
		Elapsed: time.Since(started),
		Tokens:  len(res.Results),
		Cached:  res.Cached,
	}
	if res.Err != nil {
		ev.Status, ev.Err = StatusError, res.Err
	}
	emit(opts.Progress, ev)
	if n := reporter.Suppressed(); n > 0 {
		span.WithExtra("dup_diagnostics", fmt.Sprint(n))
	}
	span.End(fmt.Sprintf("%d tokens", len(res.Results)))
	return res, nil
}

func fromCache(opts Options, file *source.File, key Digest, timer *observ.Timer, res *TokenizeResult) bool {
	idx := timer.Begin("cache_get")
	emit(opts.Progress, Event{File: file.Path, Stage: StageCache, Status: StatusWorking})

	var payload DiskPayload
	hit, err := opts.Cache.Get(key, &payload)
	if err != nil {
		diag.ReportWarning(diag.BagReporter{Bag: res.Bag}, diag.IOCacheError, source.Span{File: file.ID},
			"token cache unreadable: "+err.Error()).Emit()
	}
	if !hit {
		timer.End(idx, "miss")
		return false
	}
	timer.End(idx, "hit")

	payload.remap(file.ID)
	res.Results = payload.Results
	res.Leftover = payload.Leftover
	res.Cached = true
	for _, d := range payload.Diags {
		res.Bag.Add(diag.Diagnostic{Severity: d.Severity, Code: d.Code, Message: d.Message, Primary: d.Primary})
	}
	return true
}

func toCache(opts Options, file *source.File, key Digest, timer *observ.Timer, res *TokenizeResult) {
	idx := timer.Begin("cache_put")
	defer timer.End(idx, "")

	err := opts.Cache.Put(key, &DiskPayload{
		Path:     file.Path,
		Results:  res.Results,
		Diags:    toCached(res.Bag.Items()),
		Leftover: res.Leftover,
	})
	if err != nil {
		diag.ReportWarning(diag.BagReporter{Bag: res.Bag}, diag.IOCacheError, source.Span{File: file.ID},
			"token cache not written: "+err.Error()).Emit()
	}
}

// reportLeftover turns constructs still open at end of input into warnings
// anchored at the EOF position.
func reportLeftover(r diag.Reporter, at source.Span, lo lexer.Leftover) {
	if lo.OpenBlocks > 0 {
		diag.ReportWarning(r, diag.LexUnclosedBlock, at,
			fmt.Sprintf("%d block(s) still open at end of template", lo.OpenBlocks)).Emit()
	}
	for _, name := range lo.OpenLangs {
		diag.ReportWarning(r, diag.LexUnclosedLangBlock, at,
			fmt.Sprintf("%s block still open at end of template", name)).Emit()
	}
	if lo.InComment {
		diag.ReportWarning(r, diag.LexUnclosedDirectiveComment, at,
			"directive comment still open at end of template").Emit()
	}
}

func chainNames(cfg *config.Config) []string {
	f := cfg.Features
	f.HasTemplateLangs = cfg.Registry.HasTemplateLangs()
	plan := lexer.Plan(f)
	names := make([]string, len(plan))
	for i, s := range plan {
		names[i] = s.String()
	}
	return names
}
