package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vitalkonsult/vk-api/internal/filter"
	"github.com/vitalkonsult/vk-api/internal/models"
	"github.com/vitalkonsult/vk-api/pkg/export"
	"github.com/vitalkonsult/vk-api/pkg/storage"
)

type exportInquirySource interface {
	List(ctx context.Context, f models.InquiryFilter) ([]models.InquiryDetail, int, error)
}

type exportStudentSource interface {
	List(ctx context.Context, f models.StudentFilter) ([]models.StudentDetail, int, error)
}

type exportFeeSource interface {
	List(ctx context.Context, f models.FeeFilter) ([]models.FeeDetail, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportGeneratorConfig tunes export generation.
type ExportGeneratorConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportGenerator builds export datasets and persists rendered files.
type ExportGenerator struct {
	inquiries exportInquirySource
	students  exportStudentSource
	fees      exportFeeSource
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	now       func() time.Time
	cfg       ExportGeneratorConfig
}

// NewExportGenerator constructs an ExportGenerator.
func NewExportGenerator(inquiries exportInquirySource, students exportStudentSource, fees exportFeeSource, store fileStorage, signer *storage.SignedURLSigner, cfg ExportGeneratorConfig, logger *zap.Logger) *ExportGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportGenerator{
		inquiries: inquiries,
		students:  students,
		fees:      fees,
		storage:   store,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		signer:    signer,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// Generate builds the dataset for a job and stores the rendered export.
func (g *ExportGenerator) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := g.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = g.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = g.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := g.buildFilename(job)
	relPath, err := g.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := g.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(g.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (g *ExportGenerator) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return g.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (g *ExportGenerator) Open(relPath string) (*os.File, error) {
	return g.storage.Open(relPath)
}

// Delete removes a stored export file.
func (g *ExportGenerator) Delete(relPath string) error {
	return g.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to the configured ResultTTL).
func (g *ExportGenerator) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = g.cfg.ResultTTL
	}
	return g.storage.CleanupOlderThan(ttl)
}

func (g *ExportGenerator) buildFilename(job *models.ExportJob) string {
	timestamp := g.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", job.Type, timestamp, job.Params.Format)
}

// criteria translates persisted job params into the shared filter rules.
func (g *ExportGenerator) criteria(params models.ExportJobParams) filter.Criteria {
	c := filter.Criteria{DateFilter: filter.DateBucket(params.DateFilter)}
	if ts, err := time.ParseInLocation("2006-01-02", params.StartDate, time.Local); err == nil && params.StartDate != "" {
		c.StartDate = &ts
	}
	if ts, err := time.ParseInLocation("2006-01-02", params.EndDate, time.Local); err == nil && params.EndDate != "" {
		c.EndDate = &ts
	}
	return c
}

func (g *ExportGenerator) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ExportTypeInquiries:
		return g.buildInquiryDataset(ctx, job.Params)
	case models.ExportTypeStudents:
		return g.buildStudentDataset(ctx, job.Params)
	case models.ExportTypeFees:
		return g.buildFeeDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export type %s", job.Type)
	}
}

func (g *ExportGenerator) buildInquiryDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	var all []models.InquiryDetail
	for page := 1; ; page++ {
		batch, _, err := g.inquiries.List(ctx, models.InquiryFilter{Page: page, PageSize: 500})
		if err != nil {
			return export.Dataset{}, "", err
		}
		all = append(all, batch...)
		if len(batch) < 500 {
			break
		}
	}
	all = filter.Inquiries(all, g.criteria(params), g.now())

	rows := make([]map[string]string, 0, len(all))
	for _, item := range all {
		rows = append(rows, map[string]string{
			"Name":        item.Name,
			"Mobile":      item.Mobile,
			"Email":       item.Email,
			"College":     item.College,
			"Course":      item.InterestedCourse,
			"Lead Status": string(item.LeadStatus),
			"Created By":  derefString(item.CreatedByName),
			"Created At":  item.CreatedAt.Format("2006-01-02"),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Name", "Mobile", "Email", "College", "Course", "Lead Status", "Created By", "Created At"},
		Rows:    rows,
	}
	return dataset, "Inquiries", nil
}

func (g *ExportGenerator) buildStudentDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	var all []models.StudentDetail
	for page := 1; ; page++ {
		batch, _, err := g.students.List(ctx, models.StudentFilter{Page: page, PageSize: 500})
		if err != nil {
			return export.Dataset{}, "", err
		}
		all = append(all, batch...)
		if len(batch) < 500 {
			break
		}
	}
	all = filter.Students(all, g.criteria(params), g.now())

	rows := make([]map[string]string, 0, len(all))
	for _, item := range all {
		rows = append(rows, map[string]string{
			"Name":            item.InquiryDetails.Name,
			"Mobile":          item.Mobile,
			"Email":           item.Email,
			"Course":          item.Course,
			"Batch":           derefString(item.BatchName),
			"Total Fees":      fmt.Sprintf("%.2f", item.TotalFees),
			"Enrollment Date": item.EnrollmentDate.Format("2006-01-02"),
			"Status":          string(item.Status),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Name", "Mobile", "Email", "Course", "Batch", "Total Fees", "Enrollment Date", "Status"},
		Rows:    rows,
	}
	return dataset, "Students", nil
}

func (g *ExportGenerator) buildFeeDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	var all []models.FeeDetail
	for page := 1; ; page++ {
		batch, _, err := g.fees.List(ctx, models.FeeFilter{Page: page, PageSize: 500})
		if err != nil {
			return export.Dataset{}, "", err
		}
		all = append(all, batch...)
		if len(batch) < 500 {
			break
		}
	}

	c := g.criteria(params)
	now := g.now()
	rows := make([]map[string]string, 0, len(all))
	for _, item := range all {
		if !filter.InBucket(item.DateCollected, c.DateFilter, c.StartDate, c.EndDate, now) {
			continue
		}
		rows = append(rows, map[string]string{
			"Student":      item.StudentName,
			"Amount":       fmt.Sprintf("%.2f", item.Amount),
			"Mode":         string(item.Mode),
			"UTR":          derefString(item.UTR),
			"Collected By": derefString(item.CollectedByName),
			"Date":         item.DateCollected.Format("2006-01-02"),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Student", "Amount", "Mode", "UTR", "Collected By", "Date"},
		Rows:    rows,
	}
	return dataset, "Fees Collected", nil
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
