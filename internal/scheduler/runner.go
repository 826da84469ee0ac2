package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/forgemods/internal/status"
	"github.com/tanq16/forgemods/internal/utils"
)

type runner struct {
	store       *status.Store
	providers   []utils.Provider
	gameVersion string
}

// run drives one job to a terminal status. Providers are tried in order
// until one both resolves and fetches the file.
func (r *runner) run(ctx context.Context, job *status.Job) {
	mod := job.Mod
	if utils.FileExists(job.TargetPath) {
		r.logf(zerolog.InfoLevel, "", job, "File '%s' already exists, skipping", mod.Filename)
		r.store.Finish(job, status.Skipped, "", "already exists")
		return
	}

	reason := "no provider had a usable file"
	defer func() {
		if rec := recover(); rec != nil {
			reason = fmt.Sprintf("internal error: %v", rec)
		}
		if r.store.Finish(job, status.Failed, "", reason) {
			r.logf(zerolog.ErrorLevel, "", job, "!! Download failed: '%s' (%s)", mod.Name, reason)
		}
	}()

	for i, p := range r.providers {
		if ctx.Err() != nil {
			reason = "cancelled"
			return
		}
		if i > 0 {
			r.logf(zerolog.InfoLevel, p.Name(), job, "-> %s failed for '%s', trying %s", r.providers[i-1].Name(), mod.Name, p.Name())
		}
		if r.attempt(ctx, job, p) {
			r.store.Finish(job, status.Success, p.Name(), "")
			return
		}
	}
	if ctx.Err() != nil {
		reason = "cancelled"
	}
}

// attempt turns every error or panic from p into a false result so a broken
// provider only costs this job one fallback step.
func (r *runner) attempt(ctx context.Context, job *status.Job, p utils.Provider) (ok bool) {
	name := p.Name()
	mod := job.Mod
	defer func() {
		if rec := recover(); rec != nil {
			r.logf(zerolog.ErrorLevel, name, job, "[%s] Internal error for '%s': %v", name, mod.Name, rec)
			ok = false
		}
	}()

	r.store.SetStatus(job, status.Searching, fmt.Sprintf("Searching %s...", name))
	r.logf(zerolog.InfoLevel, name, job, "[%s] Searching '%s' for MC %s", name, mod.Name, r.gameVersion)
	ref, err := p.Resolve(ctx, mod, r.gameVersion)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			r.logf(zerolog.WarnLevel, name, job, "[%s] Not found '%s': %v", name, mod.Name, err)
		} else {
			r.logf(zerolog.ErrorLevel, name, job, "[%s] Request failed for '%s': %v", name, mod.Name, err)
		}
		return false
	}

	r.logf(zerolog.InfoLevel, name, job, "[%s] Found file %s for '%s'", name, ref.FileName, mod.Name)
	r.store.SetStatus(job, status.Downloading, fmt.Sprintf("Downloading from %s...", name))
	if err := p.Fetch(ctx, ref, job.TargetPath); err != nil {
		r.logf(zerolog.ErrorLevel, name, job, "[%s] Download error for '%s': %v", name, mod.Name, err)
		return false
	}
	if ref.Size > 0 {
		r.logf(zerolog.InfoLevel, name, job, "[%s] Saved '%s' as %s (%s)", name, mod.Name, mod.Filename, humanize.Bytes(uint64(ref.Size)))
	} else {
		r.logf(zerolog.InfoLevel, name, job, "[%s] Saved '%s' as %s", name, mod.Name, mod.Filename)
	}
	return true
}

// logf writes to the display log and mirrors the line to the debug log.
func (r *runner) logf(level zerolog.Level, provider string, job *status.Job, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.store.Append(msg)
	event := log.WithLevel(level).Str("op", "scheduler/runner").Str("job", job.ID).Str("mod", job.Mod.Name)
	if provider != "" {
		event = event.Str("provider", provider)
	}
	event.Msg(msg)
}
