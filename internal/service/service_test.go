package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/contractgen/backend/config"
	"github.com/contractgen/backend/internal/apperrors"
	"github.com/contractgen/backend/internal/eventbus"
	"github.com/contractgen/backend/internal/model"
	"github.com/contractgen/backend/internal/pkg/database"
	"github.com/contractgen/backend/internal/pkg/docx"
	"github.com/contractgen/backend/internal/pkg/hashid"
	"github.com/contractgen/backend/internal/pkg/storage"
	"github.com/contractgen/backend/internal/repository"
)

type fixture struct {
	db          *gorm.DB
	cfg         *config.Config
	bus         *eventbus.Bus
	users       *UserService
	orgs        *OrganizationService
	keys        *KeyService
	attachments *AttachmentService
	templates   *TemplateService
	contracts   *ContractService
	jobs        *JobService
	jobRepo     repository.JobRepository
	converter   *fakeConverter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.InitDB("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init db error: %v", err)
	}

	workDir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			Type:    "local",
			Dir:     t.TempDir(),
			WorkDir: workDir,
		},
		Scheduler: config.SchedulerConfig{
			Interval:   3 * time.Second,
			MaxWorkers: 1,
			JobTimeout: time.Minute,
		},
	}

	store, err := storage.NewLocalStore(cfg.Storage.Dir)
	if err != nil {
		t.Fatalf("init store error: %v", err)
	}
	enc, err := hashid.New("attachments", 10)
	if err != nil {
		t.Fatalf("init hashid error: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	keyRepo := repository.NewKeyRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	contractRepo := repository.NewContractRepository(db)
	jobRepo := repository.NewJobRepository(db)

	users := NewUserService(userRepo)
	orgs := NewOrganizationService(orgRepo, userRepo)
	keys := NewKeyService(keyRepo)
	attachments := NewAttachmentService(attachmentRepo, store, enc)
	templates := NewTemplateService(templateRepo, keys, orgs, attachments, workDir)
	contracts := NewContractService(contractRepo, templates)
	conv := &fakeConverter{}
	bus := eventbus.NewBus()
	jobs := NewJobService(cfg, jobRepo, contractRepo, attachments, conv, bus)

	return &fixture{
		db:          db,
		cfg:         cfg,
		bus:         bus,
		users:       users,
		orgs:        orgs,
		keys:        keys,
		attachments: attachments,
		templates:   templates,
		contracts:   contracts,
		jobs:        jobs,
		jobRepo:     jobRepo,
		converter:   conv,
	}
}

// newOperator 建用户、机构并建立成员关系
func (f *fixture) newOperator(t *testing.T, phone string) (*model.User, *model.Organization) {
	t.Helper()
	user, err := f.users.Create("测试操作员", phone, "AB123", model.RoleOperator)
	if err != nil {
		t.Fatalf("create user error: %v", err)
	}
	org, err := f.orgs.Create("测试机构", "测试地址")
	if err != nil {
		t.Fatalf("create org error: %v", err)
	}
	if err := f.orgs.AddMember(org.ID, user.ID); err != nil {
		t.Fatalf("add member error: %v", err)
	}
	return user, org
}

// uploadTemplate 上传一个包含给定占位符段落的 docx 模板
func (f *fixture) uploadTemplate(t *testing.T, actor *model.User, orgID uint, name string, paragraphs ...string) *model.Template {
	t.Helper()
	tpl, err := f.templates.Upload(context.Background(), actor, orgID, name, name+".docx", bytes.NewReader(docxBytes(t, paragraphs...)))
	if err != nil {
		t.Fatalf("upload template error: %v", err)
	}
	return tpl
}

type fakeConverter struct {
	fail  bool
	calls int
}

func (f *fakeConverter) ConvertToPDF(ctx context.Context, docxPath, outDir string) (string, error) {
	f.calls++
	if f.fail {
		return "", &apperrors.ConversionFailureError{Path: docxPath, Err: errors.New("renderer exited 77")}
	}
	base := strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))
	out := filepath.Join(outDir, base+".pdf")
	data, err := os.ReadFile(docxPath)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return "", err
	}
	return out, nil
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func keysOf(m map[string][]byte) []string {
	var names []string
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// docText 解析 docx 并拼接全部段落文本
func docText(t *testing.T, path string) string {
	t.Helper()
	doc, err := docx.Open(path)
	if err != nil {
		t.Fatalf("open generated docx error: %v", err)
	}
	var parts []string
	for _, p := range doc.Paragraphs() {
		parts = append(parts, p.Text())
	}
	return strings.Join(parts, "\n")
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract_seed.docx")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file error: %v", err)
	}
	return path
}

// docxBytes 构造一个每段一个 run 的最小 docx
func docxBytes(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body bytes.Buffer
	for _, p := range paragraphs {
		fmt.Fprintf(&body, `<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, p)
	}
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`,
		"word/document.xml": documentXML,
	}
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip part error: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip part error: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip error: %v", err)
	}
	return buf.Bytes()
}
