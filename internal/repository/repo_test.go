package repository

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/contractgen/backend/internal/model"
	"github.com/contractgen/backend/internal/pkg/database"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitDB("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init db error: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, phone, role string) *model.User {
	t.Helper()
	user := &model.User{
		FullName:    "测试用户",
		PhoneNumber: phone,
		Role:        role,
		Token:       "tok-" + phone,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user error: %v", err)
	}
	return user
}

func seedTemplate(t *testing.T, db *gorm.DB, orgID uint, keys []model.Key) *model.Template {
	t.Helper()
	att := &model.Attachment{
		Name:        "template.docx",
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Size:        128,
		Extension:   "docx",
		Path:        "templates/2026/08/28/x.docx",
	}
	if err := db.Create(att).Error; err != nil {
		t.Fatalf("seed attachment error: %v", err)
	}
	tpl := &model.Template{
		Name:           "劳动合同",
		OrganizationID: orgID,
		AttachmentID:   att.ID,
		Keys:           keys,
	}
	if err := db.Create(tpl).Error; err != nil {
		t.Fatalf("seed template error: %v", err)
	}
	return tpl
}
