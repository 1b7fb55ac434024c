package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"versionup/internal/planstore"
	"versionup/internal/resolve"
)

func formatVersion(v int, known bool) string {
	if !known {
		return "-"
	}
	return "v" + strconv.Itoa(v)
}

func baseOrDash(path string) string {
	if strings.TrimSpace(path) == "" {
		return "-"
	}
	return filepath.Base(path)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func reportDetail(report resolve.ClipReport) string {
	inst := report.Instruction
	switch report.Outcome {
	case resolve.OutcomeUpdateAvailable:
		detail := "-> " + filepath.Base(inst.NewPath)
		if inst.FrameOffset != 0 {
			detail += fmt.Sprintf(" (offset %+d)", inst.FrameOffset)
		}
		return detail
	case resolve.OutcomeIncompatible:
		if inst.Detail != "" {
			return fmt.Sprintf("%s: %s", inst.Reason, inst.Detail)
		}
		return string(inst.Reason)
	case resolve.OutcomeUnscannable:
		return fmt.Sprintf("%s: %s", report.ErrorKind, report.Error)
	}
	return ""
}

func clipLabel(report resolve.ClipReport) string {
	if name := strings.TrimSpace(report.Clip.Name); name != "" {
		return name
	}
	return report.Clip.ID
}

// renderPlan writes one row per clip in timeline order, then the outcome
// counts.
func renderPlan(out io.Writer, plan *resolve.Plan, colorize bool) {
	rows := make([][]string, 0, len(plan.Clips))
	for _, report := range plan.Clips {
		parsed := report.ShotKey != ""
		rows = append(rows, []string{
			clipLabel(report),
			report.Clip.Track,
			report.ShotKey,
			formatVersion(report.CurrentVersion, parsed),
			formatVersion(report.HighestVersion, parsed && report.HighestVersion > 0),
			formatVersion(report.UsableVersion, report.UsableVersion > 0),
			colorLabel(string(report.Outcome), outcomeKind(report.Outcome), colorize),
			reportDetail(report),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Clip", "Track", "Shot", "Current", "Highest", "Usable", "Outcome", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))
	counts := plan.Counts()
	fmt.Fprintf(out, "%d clips: %d update available, %d no newer version, %d incompatible, %d unscannable\n",
		counts.Total(), counts.UpdateAvailable, counts.NoNewerVersion, counts.Incompatible, counts.Unscannable)
}

func renderApplySummary(out io.Writer, summary resolve.ApplySummary, colorize bool) {
	rows := make([][]string, 0, len(summary.Results))
	for _, res := range summary.Results {
		label := res.ClipName
		if label == "" {
			label = res.ClipID
		}
		target := ""
		if res.NewPath != "" {
			target = filepath.Base(res.NewPath)
		}
		rows = append(rows, []string{
			label,
			colorLabel(string(res.Status), applyKind(res.Status), colorize),
			target,
			res.Detail,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Clip", "Status", "New source", "Detail"}, rows, nil))
	fmt.Fprintf(out, "%d applied, %d skipped, %d failed\n", summary.Applied, summary.Skipped, summary.Failed)
}

func renderPlanRecords(out io.Writer, records []planstore.Record) {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		applied := "-"
		if rec.AppliedAt != nil {
			applied = formatTime(*rec.AppliedAt)
		}
		rows = append(rows, []string{
			shortID(rec.ID),
			formatTime(rec.CreatedAt),
			baseOrDash(rec.Timeline),
			rec.Track,
			strconv.Itoa(rec.Clips),
			strconv.Itoa(rec.Counts.UpdateAvailable),
			strconv.Itoa(rec.Counts.Incompatible),
			strconv.Itoa(rec.Counts.Unscannable),
			applied,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Created", "Timeline", "Track", "Clips", "Updates", "Incompatible", "Unscannable", "Applied"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
}
