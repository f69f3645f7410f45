// Package csvimport drives the bulk import of a collection hierarchy from a
// CSV file: upload slot, blob transfer, import confirmation and refresh.
package csvimport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/events"
	"github.com/manojSRawat/sunbird-resource-library/internal/editor"
	"github.com/manojSRawat/sunbird-resource-library/internal/infra/logx"
)

// Purpose scopes upload slots to hierarchy imports.
const Purpose = "hierarchy"

var (
	ErrBusy        = errors.New("csv import already in progress")
	ErrNoFile      = errors.New("no csv file selected")
	ErrNoSampleURL = errors.New("sample csv url is not configured")
)

// Phase is the state of the current session.
type Phase int

const (
	Idle Phase = iota
	FileSelected
	AwaitingSlot
	UploadingFile
	ConfirmingImport
	Success
	ErrorAwaitingSlot
	ErrorUploading
	ErrorConfirming
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case FileSelected:
		return "file-selected"
	case AwaitingSlot:
		return "awaiting-slot"
	case UploadingFile:
		return "uploading"
	case ConfirmingImport:
		return "confirming"
	case Success:
		return "success"
	case ErrorAwaitingSlot:
		return "error-slot"
	case ErrorUploading:
		return "error-upload"
	case ErrorConfirming:
		return "error-confirm"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Busy reports whether a network step is outstanding.
func (p Phase) Busy() bool {
	return p == AwaitingSlot || p == UploadingFile || p == ConfirmingImport
}

// Failed reports whether p is one of the error phases.
func (p Phase) Failed() bool {
	return p == ErrorAwaitingSlot || p == ErrorUploading || p == ErrorConfirming
}

// Kind classifies a failed step.
type Kind int

const (
	SlotAcquisition Kind = iota + 1
	Transfer
	Confirmation
)

func (k Kind) String() string {
	switch k {
	case SlotAcquisition:
		return "slot"
	case Transfer:
		return "transfer"
	case Confirmation:
		return "confirmation"
	}
	return "unknown"
}

// StepError is a failed step with its user facing message and the detail
// the server sent, if any.
type StepError struct {
	Kind    Kind
	Message string
	Detail  string
	Err     error
}

func (e *StepError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

func (e *StepError) Unwrap() error { return e.Err }

// Session is one upload attempt.
type Session struct {
	ID      string
	File    File
	Phase   Phase
	Err     *StepError
	FileURL string
}

// SlotRequester issues pre-signed upload URLs.
type SlotRequester interface {
	RequestUploadSlot(ctx context.Context, fileName, collectionID, purpose string) (editor.UploadSlot, error)
}

// FileTransferer stores bytes at a pre-signed URL.
type FileTransferer interface {
	PutFile(ctx context.Context, signedURL string, data []byte, contentType string, headers map[string]string) error
}

// ImportConfirmer starts backend ingestion of an uploaded file.
type ImportConfirmer interface {
	ConfirmImport(ctx context.Context, fileURL, mimeType, collectionID string) error
}

// Downloader fetches absolute URLs.
type Downloader interface {
	DownloadFile(ctx context.Context, url string) ([]byte, error)
}

// Messages are the fixed texts shown per failure kind.
type Messages struct {
	SlotFailed   string
	UploadFailed string
	ImportFailed string
}

func (m Messages) For(k Kind) string {
	switch k {
	case SlotAcquisition:
		return m.SlotFailed
	case Transfer:
		return m.UploadFailed
	default:
		return m.ImportFailed
	}
}

type Options struct {
	CollectionID string
	// CreateMode picks the upload sub-mode (first import) over update.
	CreateMode bool
	SampleURL  string
	Messages   Messages
	Sink       events.Sink

	Slots      SlotRequester
	Blob       FileTransferer
	Confirmer  ImportConfirmer
	Downloader Downloader
}

// Flags is a snapshot of what the import dialog shows.
type Flags struct {
	Phase                Phase
	UploadMode           bool
	UpdateMode           bool
	UploadEnabled        bool
	ValidationInProgress bool
	Success              bool
	Error                bool
	Closable             bool
	FileName             string
	Message              string
	Detail               string
}

// Machine is safe for use from a UI goroutine while Validate runs in another.
type Machine struct {
	opt Options

	mu         sync.Mutex
	session    *Session
	uploadMode bool
	updateMode bool
}

func NewMachine(opt Options) *Machine {
	m := &Machine{opt: opt}
	m.Open(opt.CreateMode)
	return m
}

// Open enters the upload or update sub-mode. It never inspects data to
// decide; the caller tells.
func (m *Machine) Open(create bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opt.CreateMode = create
	m.uploadMode = create
	m.updateMode = !create
}

// SelectFile starts a new session for f. No network call is made.
func (m *Machine) SelectFile(f File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && m.session.Phase.Busy() {
		return ErrBusy
	}
	m.session = &Session{ID: uuid.NewString(), File: f, Phase: FileSelected}
	logx.Log(logx.LevelDebug, "csv file selected", map[string]any{
		"session": m.session.ID, "file": f.Name, "bytes": len(f.Data), "mime": f.MimeType,
	})
	return nil
}

// Validate runs slot request, transfer and confirmation strictly in order.
// A failed step leaves the machine closable in the matching error phase and
// is also returned as a *StepError. Nothing is retried.
func (m *Machine) Validate(ctx context.Context) error {
	m.mu.Lock()
	s := m.session
	switch {
	case s == nil:
		m.mu.Unlock()
		return ErrNoFile
	case s.Phase.Busy():
		m.mu.Unlock()
		return ErrBusy
	case s.Phase != FileSelected:
		m.mu.Unlock()
		return errors.Errorf("cannot validate in phase %s", s.Phase)
	}
	file := s.File
	m.uploadMode, m.updateMode = false, false
	// claim the session before unlocking so a concurrent call sees it busy
	s.Phase = AwaitingSlot
	m.mu.Unlock()
	logx.Log(logx.LevelInfo, "csv import", map[string]any{"session": s.ID, "phase": AwaitingSlot.String()})

	slot, err := m.opt.Slots.RequestUploadSlot(ctx, file.Name, m.opt.CollectionID, Purpose)
	if err != nil {
		return m.fail(s, ErrorAwaitingSlot, SlotAcquisition, err)
	}

	m.advance(s, UploadingFile)
	if err := m.opt.Blob.PutFile(ctx, slot.SignedURL, file.Data, CSVMimeType, editor.BlobHeaders); err != nil {
		return m.fail(s, ErrorUploading, Transfer, err)
	}
	fileURL := stripQuery(slot.SignedURL)

	m.mu.Lock()
	s.FileURL = fileURL
	m.mu.Unlock()
	m.advance(s, ConfirmingImport)
	if err := m.opt.Confirmer.ConfirmImport(ctx, fileURL, file.MimeType, m.opt.CollectionID); err != nil {
		return m.fail(s, ErrorConfirming, Confirmation, err)
	}

	m.advance(s, Success)
	m.opt.Sink.Emit(events.UpdateHierarchy())
	return nil
}

func (m *Machine) advance(s *Session, p Phase) {
	m.mu.Lock()
	s.Phase = p
	m.mu.Unlock()
	logx.Log(logx.LevelInfo, "csv import", map[string]any{"session": s.ID, "phase": p.String()})
}

func (m *Machine) fail(s *Session, p Phase, k Kind, err error) error {
	stepErr := &StepError{Kind: k, Message: m.opt.Messages.For(k), Detail: editor.Detail(err), Err: err}
	m.mu.Lock()
	s.Phase = p
	s.Err = stepErr
	m.mu.Unlock()
	logx.Log(logx.LevelWarn, "csv import failed", map[string]any{
		"session": s.ID, "phase": p.String(), "error": err.Error(),
	})
	return stepErr
}

// stripQuery drops everything from the first '?' on; the query carries the
// upload signature, the rest is the durable location.
func stripQuery(signedURL string) string {
	u, _, _ := strings.Cut(signedURL, "?")
	return u
}

// Reset is the re-upload action: the file, error and upload-enabled state are
// cleared and the current sub-mode is re-entered.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && m.session.Phase.Busy() {
		return ErrBusy
	}
	m.session = nil
	m.uploadMode = m.opt.CreateMode
	m.updateMode = !m.opt.CreateMode
	return nil
}

// Close resets the dialog, leaves both sub-modes and tells the host.
func (m *Machine) Close() error {
	m.mu.Lock()
	if m.session != nil && m.session.Phase.Busy() {
		m.mu.Unlock()
		return ErrBusy
	}
	m.session = nil
	m.uploadMode, m.updateMode = false, false
	m.mu.Unlock()
	m.opt.Sink.Emit(events.CloseModal())
	return nil
}

// Session returns a copy of the current session, or false when none exists.
func (m *Machine) Session() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

func (m *Machine) Flags() Flags {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := Flags{UploadMode: m.uploadMode, UpdateMode: m.updateMode, Closable: true}
	s := m.session
	if s == nil {
		return f
	}
	f.Phase = s.Phase
	f.FileName = s.File.Name
	switch {
	case s.Phase == FileSelected:
		f.UploadEnabled = true
	case s.Phase.Busy():
		f.ValidationInProgress = true
		f.Closable = false
	case s.Phase == Success:
		f.Success = true
	case s.Phase.Failed():
		f.Error = true
		if s.Err != nil {
			f.Message, f.Detail = s.Err.Message, s.Err.Detail
		}
	}
	return f
}

// SampleFile is the downloadable template for the collection.
type SampleFile struct {
	Name string
	Data []byte
}

// SampleCSV downloads the configured sample sheet, named after the collection.
func (m *Machine) SampleCSV(ctx context.Context) (SampleFile, error) {
	if m.opt.SampleURL == "" {
		return SampleFile{}, ErrNoSampleURL
	}
	data, err := m.opt.Downloader.DownloadFile(ctx, m.opt.SampleURL)
	if err != nil {
		return SampleFile{}, errors.Wrap(err, "download sample csv")
	}
	return SampleFile{Name: m.opt.CollectionID + ".csv", Data: data}, nil
}
