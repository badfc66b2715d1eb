package repository

import (
	"errors"
	"testing"

	"github.com/contractgen/backend/internal/model"
)

func TestContractOperatorScoping(t *testing.T) {
	db := testDB(t)
	repo := NewContractRepository(db)

	alice := seedUser(t, db, "13800000001", model.RoleOperator)
	bob := seedUser(t, db, "13800000002", model.RoleOperator)
	tpl := seedTemplate(t, db, 1, []model.Key{{Token: "$name$"}})

	contract := &model.Contract{
		TemplateID: tpl.ID,
		Operators:  []model.User{*alice},
		Data:       []model.ContractData{{KeyID: tpl.Keys[0].ID, Value: "张三"}},
	}
	if err := repo.Create(contract); err != nil {
		t.Fatalf("create contract error: %v", err)
	}

	ok, err := repo.IsOperator(contract.ID, alice.ID)
	if err != nil || !ok {
		t.Fatalf("expected alice to be operator, ok=%v err=%v", ok, err)
	}
	ok, err = repo.IsOperator(contract.ID, bob.ID)
	if err != nil || ok {
		t.Fatalf("expected bob not to be operator, ok=%v err=%v", ok, err)
	}

	mine, err := repo.ListByOperator(alice.ID)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != contract.ID {
		t.Fatalf("expected one contract for alice, got %d", len(mine))
	}
	if len(mine[0].Data) != 1 || mine[0].Data[0].Key == nil {
		t.Fatalf("expected preloaded data with key")
	}

	none, err := repo.ListByOperator(bob.ID)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no contracts for bob, got %d", len(none))
	}
}

func TestContractGeneratedFlag(t *testing.T) {
	db := testDB(t)
	repo := NewContractRepository(db)
	tpl := seedTemplate(t, db, 1, []model.Key{{Token: "$amount$"}})

	contract := &model.Contract{
		TemplateID: tpl.ID,
		Data:       []model.ContractData{{KeyID: tpl.Keys[0].ID, Value: "1000"}},
	}
	if err := repo.Create(contract); err != nil {
		t.Fatalf("create contract error: %v", err)
	}

	blob := &model.Attachment{Name: "c.docx", ContentType: "application/octet-stream", Size: 1, Extension: "docx", Path: "contracts/c.docx"}
	if err := db.Create(blob).Error; err != nil {
		t.Fatalf("seed attachment error: %v", err)
	}

	if err := repo.SetGenerated(contract.ID, blob.ID); err != nil {
		t.Fatalf("set generated error: %v", err)
	}
	got, err := repo.Get(contract.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if !got.IsGenerated || got.AttachmentID == nil || *got.AttachmentID != blob.ID {
		t.Fatalf("expected generated with attachment, got %+v", got)
	}

	// 数据更新后生成物作废
	if err := repo.UpdateDataValue(got.Data[0].ID, "2000"); err != nil {
		t.Fatalf("update value error: %v", err)
	}
	if err := repo.ResetGenerated(contract.ID); err != nil {
		t.Fatalf("reset generated error: %v", err)
	}
	got, err = repo.Get(contract.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.IsGenerated || got.AttachmentID != nil {
		t.Fatalf("expected reset, got generated=%v", got.IsGenerated)
	}
	if got.Data[0].Value != "2000" {
		t.Fatalf("expected updated value, got %q", got.Data[0].Value)
	}
}

func TestContractSoftDelete(t *testing.T) {
	db := testDB(t)
	repo := NewContractRepository(db)
	tpl := seedTemplate(t, db, 1, []model.Key{{Token: "$date$"}})

	contract := &model.Contract{
		TemplateID: tpl.ID,
		Data:       []model.ContractData{{KeyID: tpl.Keys[0].ID, Value: "2026-08-28"}},
	}
	if err := repo.Create(contract); err != nil {
		t.Fatalf("create contract error: %v", err)
	}

	if err := repo.Delete(contract.ID); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if _, err := repo.Get(contract.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// 软删除：带删除标记的行仍在库中
	var count int64
	if err := db.Unscoped().Model(&model.Contract{}).Where("id = ?", contract.ID).Count(&count).Error; err != nil {
		t.Fatalf("count error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected soft deleted row to remain, got %d", count)
	}
}

func TestTemplateReplaceKeys(t *testing.T) {
	db := testDB(t)
	repo := NewTemplateRepository(db)
	tpl := seedTemplate(t, db, 1, []model.Key{{Token: "$old$"}})

	fresh := model.Key{Token: "$new$"}
	if err := db.Create(&fresh).Error; err != nil {
		t.Fatalf("seed key error: %v", err)
	}
	if err := repo.ReplaceKeys(tpl, []model.Key{fresh}); err != nil {
		t.Fatalf("replace keys error: %v", err)
	}

	got, err := repo.Get(tpl.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if len(got.Keys) != 1 || got.Keys[0].Token != "$new$" {
		t.Fatalf("expected replaced key set, got %+v", got.Keys)
	}
}

func TestTemplateExistsByNameAndOrganization(t *testing.T) {
	db := testDB(t)
	repo := NewTemplateRepository(db)
	seedTemplate(t, db, 5, nil)

	exists, err := repo.ExistsByNameAndOrganization("劳动合同", 5)
	if err != nil || !exists {
		t.Fatalf("expected exists, got %v err=%v", exists, err)
	}
	exists, err = repo.ExistsByNameAndOrganization("劳动合同", 6)
	if err != nil || exists {
		t.Fatalf("expected not exists in other org, got %v err=%v", exists, err)
	}
}
