package presentation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
)

const (
	AppTitle       = "Nusantara Ledger"
	AppSubtitle    = "Transparency and Anti-Corruption Monitoring System"
	DefaultVersion = "1.0.0-dev"
	SafetyNotice   = "Safety Notice: Any suspected corruption case must undergo legal review before public disclosure"
)

// View is the toolkit-independent render tree of one dashboard frame.
type View struct {
	Loading     bool          `json:"loading"`
	LoadingText LoadingScreen `json:"loading_text"`
	Header      Header        `json:"header"`
	Cards       []StatCard    `json:"cards"`
	Upload      UploadPanel   `json:"upload"`
	Documents   DocumentPanel `json:"documents"`
	Alerts      AlertPanel    `json:"alerts"`
	Notices     []NoticeView  `json:"notices"`
	Footer      Footer        `json:"footer"`
	FetchError  string        `json:"fetch_error,omitempty"`
	RefreshedAt string        `json:"refreshed_at,omitempty"`
	Cycle       uint64        `json:"cycle"`
}

type LoadingScreen struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type Header struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// StatCard is one summary tile. Short is the label used in compact "Short: Value" form.
type StatCard struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Short   string `json:"short"`
	Value   string `json:"value"`
	Caption string `json:"caption,omitempty"`
	Tone    string `json:"tone"`
}

func (c StatCard) Text() string {
	return c.Short + ": " + c.Value
}

type UploadPanel struct {
	Title         string `json:"title"`
	Accept        string `json:"accept"`
	LimitsText    string `json:"limits_text"`
	State         string `json:"state"`
	SelectedName  string `json:"selected_name,omitempty"`
	SelectedSize  string `json:"selected_size,omitempty"`
	SelectedPages int    `json:"selected_pages,omitempty"`
	ButtonLabel   string `json:"button_label"`
	CanSubmit     bool   `json:"can_submit"`
	Uploading     bool   `json:"uploading"`
}

type EmptyState struct {
	Title string `json:"title"`
	Hint  string `json:"hint"`
}

type DocumentRow struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Tag      string `json:"tag"`
	Badge    string `json:"badge"`
	Status   string `json:"status"`
	Date     string `json:"date"`
	Risk     Risk   `json:"risk"`
}

type DocumentPanel struct {
	Title string        `json:"title"`
	Rows  []DocumentRow `json:"rows"`
	Empty *EmptyState   `json:"empty,omitempty"`
}

type AlertRow struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Severity    string        `json:"severity"`
	Style       SeverityStyle `json:"style"`
	Date        string        `json:"date"`
}

type AlertPanel struct {
	Title string      `json:"title"`
	Rows  []AlertRow  `json:"rows"`
	Empty *EmptyState `json:"empty,omitempty"`
}

type NoticeView struct {
	ID      string `json:"id"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Footer struct {
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	Version      string `json:"version"`
	SafetyNotice string `json:"safety_notice"`
}

// Render derives the render tree from a view state. It never mutates state.
func Render(state domain.ViewState, notices []domain.Notice, opts Options) View {
	opts = opts.normalized()

	view := View{
		Loading:     state.Loading,
		LoadingText: LoadingScreen{Title: "Loading " + AppTitle + "...", Subtitle: "Connecting to backend services..."},
		Header:      Header{Title: AppTitle, Subtitle: AppSubtitle},
		Cards:       renderCards(state),
		Upload:      renderUpload(state),
		Documents:   renderDocuments(state.Documents, opts),
		Alerts:      renderAlerts(state.Alerts, opts),
		Notices:     make([]NoticeView, 0, len(notices)),
		Footer: Footer{
			Title:        AppTitle,
			Subtitle:     AppSubtitle,
			Version:      AppTitle + " v" + opts.Version + " • Open Source Transparency System",
			SafetyNotice: SafetyNotice,
		},
		FetchError: state.LastFetchError,
		Cycle:      state.Cycle,
	}
	if !state.RefreshedAt.IsZero() {
		view.RefreshedAt = state.RefreshedAt.In(opts.Location).Format(time.DateTime)
	}
	for _, n := range notices {
		view.Notices = append(view.Notices, NoticeView{ID: n.ID, Level: string(n.Level), Message: n.Message})
	}
	return view
}

func renderCards(state domain.ViewState) []StatCard {
	return []StatCard{
		{
			Key:     "documents",
			Label:   "Total Documents",
			Short:   "Documents",
			Value:   strconv.Itoa(state.Stats.Documents.Total),
			Caption: fmt.Sprintf("%d processed, %d pending", state.Stats.Documents.Processed, state.Stats.Documents.Pending),
			Tone:    "blue",
		},
		{
			Key:   "high_alerts",
			Label: "High Priority Alerts",
			Short: "High Priority",
			Value: strconv.Itoa(state.Stats.Alerts.High),
			Tone:  "red",
		},
		{
			Key:   "medium_alerts",
			Label: "Medium Alerts",
			Short: "Medium",
			Value: strconv.Itoa(state.Stats.Alerts.Medium),
			Tone:  "amber",
		},
		{
			Key:   "system_status",
			Label: "System Status",
			Short: "System Status",
			Value: healthLabel(state.Health.Status),
			Tone:  healthTone(state.Health.Status),
		},
	}
}

func healthLabel(status domain.HealthStatus) string {
	switch status {
	case domain.HealthHealthy:
		return "Healthy"
	case domain.HealthDegraded:
		return "Degraded"
	default:
		return "Unknown"
	}
}

func healthTone(status domain.HealthStatus) string {
	switch status {
	case domain.HealthHealthy:
		return "green"
	case domain.HealthDegraded:
		return "red"
	default:
		return "gray"
	}
}

func renderUpload(state domain.ViewState) UploadPanel {
	panel := UploadPanel{
		Title:       "Upload Document",
		Accept:      strings.Join(state.UploadLimits.AllowedExtensions, ","),
		LimitsText:  LimitsText(state.UploadLimits),
		State:       string(state.UploadState),
		ButtonLabel: "Upload & Analyze",
		Uploading:   state.Uploading,
	}
	if state.SelectedFile != nil {
		panel.SelectedName = state.SelectedFile.Name
		panel.SelectedSize = humanize.IBytes(uint64(max(state.SelectedFile.Size, 0)))
		panel.SelectedPages = state.SelectedFile.Pages
	}
	if state.Uploading {
		panel.ButtonLabel = "Uploading..."
	}
	panel.CanSubmit = state.SelectedFile != nil && !state.Uploading
	return panel
}

// LimitsText describes the advisory upload limits shown before submission.
func LimitsText(limits domain.UploadLimits) string {
	formats := make([]string, 0, len(limits.AllowedExtensions))
	for _, ext := range limits.AllowedExtensions {
		formats = append(formats, strings.ToUpper(strings.TrimPrefix(ext, ".")))
	}
	parts := make([]string, 0, 2)
	if len(formats) > 0 {
		parts = append(parts, "Supported formats: "+strings.Join(formats, ", "))
	}
	if limits.MaxBytes > 0 {
		parts = append(parts, "Maximum "+sizeLimit(limits.MaxBytes))
	}
	return strings.Join(parts, " • ")
}

// sizeLimit renders whole-mebibyte limits as "50MB"; other sizes use binary units.
func sizeLimit(n int64) string {
	if n%(1<<20) == 0 {
		return strconv.FormatInt(n>>20, 10) + "MB"
	}
	return humanize.IBytes(uint64(n))
}

func renderDocuments(docs []domain.Document, opts Options) DocumentPanel {
	panel := DocumentPanel{Title: "Recent Documents", Rows: []DocumentRow{}}
	for _, doc := range TopN(docs, opts.TopN) {
		panel.Rows = append(panel.Rows, DocumentRow{
			ID:       doc.ID.String(),
			Filename: doc.Filename,
			Tag:      doc.Tag,
			Badge:    StatusBadge(doc.Status),
			Status:   string(doc.Status),
			Date:     FormatDate(doc.CreatedAt, opts.Location, opts.DateLayout),
			Risk:     FormatRisk(doc.AnomalyScore, opts.RiskThreshold),
		})
	}
	if len(panel.Rows) == 0 {
		panel.Empty = &EmptyState{Title: "No documents uploaded yet", Hint: "Upload your first document to get started"}
	}
	return panel
}

func renderAlerts(alerts []domain.Alert, opts Options) AlertPanel {
	panel := AlertPanel{Title: "Recent Alerts", Rows: []AlertRow{}}
	for _, alert := range TopN(alerts, opts.TopN) {
		panel.Rows = append(panel.Rows, AlertRow{
			ID:          alert.ID.String(),
			Title:       alert.Title,
			Description: alert.Description,
			Severity:    strings.ToUpper(string(alert.Severity)),
			Style:       Classify(string(alert.Severity)),
			Date:        FormatDate(alert.CreatedAt, opts.Location, opts.DateLayout),
		})
	}
	if len(panel.Rows) == 0 {
		panel.Empty = &EmptyState{Title: "No alerts generated yet", Hint: "Upload documents to start analysis"}
	}
	return panel
}
