package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"quill/internal/diag"
	"quill/internal/lexer"
	"quill/internal/observ"
	"quill/internal/source"
)

// TokenizeDirResult содержит результат токенизации одного шаблона
type TokenizeDirResult struct {
	Path     string        // Путь к файлу
	FileID   source.FileID // ID файла в FileSet, 0 если загрузка не удалась
	Loaded   bool
	Results  []lexer.Result
	Bag      *diag.Bag
	Leftover lexer.Leftover
	Cached   bool
	Timing   *observ.Report // nil unless Options.Timings
	Err      error          // дефект цепочки
}

// ListTemplates returns the sorted list of files under dir whose extension is
// in exts (case-insensitive).
func ListTemplates(dir string, exts []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if slices.Contains(exts, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// TokenizeDir tokenizes every template under dir in parallel. Results are in
// ListTemplates order regardless of scheduling. A file that fails to load
// gets an IO4001 diagnostic instead of tokens.
func TokenizeDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []TokenizeDirResult, error) {
	ctx, run := beginRun(ctx, "tokenize_dir")
	defer run.End(dir)

	files, err := ListTemplates(dir, opts.exts())
	if err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	// Предзагружаем все файлы: FileSet не потокобезопасен на запись
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error)
	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Одна конфигурация на весь прогон, её реестр только читается
	cfg := opts.config()
	opts.Config = cfg
	fp := Fingerprint(cfg)

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]TokenizeDirResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, failed := loadErrors[path]; failed {
				bag := diag.NewBag(opts.MaxDiagnostics)
				bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load file: "+loadErr.Error()))
				results[i] = TokenizeDirResult{Path: path, Bag: bag, Err: loadErr}
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr})
				return nil
			}

			fileID := fileIDs[path]
			res, err := tokenizeFile(gctx, fileSet, fileSet.Get(fileID), opts, fp)
			if err != nil {
				// ошибка конфигурации одинакова для всех файлов
				return err
			}
			results[i] = TokenizeDirResult{
				Path:     path,
				FileID:   fileID,
				Loaded:   true,
				Results:  res.Results,
				Bag:      res.Bag,
				Leftover: res.Leftover,
				Cached:   res.Cached,
				Timing:   res.Timing,
				Err:      res.Err,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
