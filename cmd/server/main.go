package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"k8s.io/klog/v2"

	"github.com/contractgen/backend/config"
	"github.com/contractgen/backend/internal/eventbus"
	"github.com/contractgen/backend/internal/handler"
	"github.com/contractgen/backend/internal/pkg/converter"
	"github.com/contractgen/backend/internal/pkg/database"
	"github.com/contractgen/backend/internal/pkg/hashid"
	"github.com/contractgen/backend/internal/pkg/storage"
	"github.com/contractgen/backend/internal/repository"
	"github.com/contractgen/backend/internal/router"
	"github.com/contractgen/backend/internal/service"
	"github.com/contractgen/backend/internal/service/orchestrator"
	"github.com/contractgen/backend/internal/subscriber"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()

	if err := os.MkdirAll(cfg.Storage.WorkDir, 0755); err != nil {
		log.Fatalf("Failed to create work directory: %v", err)
	}

	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	keyRepo := repository.NewKeyRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	contractRepo := repository.NewContractRepository(db)
	jobRepo := repository.NewJobRepository(db)

	store, err := newBlobStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}
	// 下载链接只暴露短 hash，盐固定保证重启后 hash 稳定
	enc, err := hashid.New("attachments", 10)
	if err != nil {
		log.Fatalf("Failed to initialize hashid encoder: %v", err)
	}

	bus := eventbus.NewBus()
	subscriber.NewJobEventSubscriber().Register(bus)

	users := service.NewUserService(userRepo)
	orgs := service.NewOrganizationService(orgRepo, userRepo)
	keys := service.NewKeyService(keyRepo)
	attachments := service.NewAttachmentService(attachmentRepo, store, enc)
	templates := service.NewTemplateService(templateRepo, keys, orgs, attachments, cfg.Storage.WorkDir)
	contracts := service.NewContractService(contractRepo, templates)
	conv := converter.NewSofficeConverter(cfg.Converter.Binary, cfg.Converter.Timeout)
	jobs := service.NewJobService(cfg, jobRepo, contractRepo, attachments, conv, bus)

	// 重启后遗留的 processing 任务无法续跑，统一判定失败
	if err := jobs.FailStuckOnStartup(); err != nil {
		klog.Errorf("启动清理失败: %v", err)
	}

	orch, err := orchestrator.NewOrchestrator(cfg.Scheduler.MaxWorkers, &jobExecutor{jobs: jobs})
	if err != nil {
		log.Fatalf("Failed to initialize orchestrator: %v", err)
	}
	orch.Start()

	sched := service.NewScheduler(cfg, jobRepo, orch)
	sched.Start()
	jobs.SetKick(sched.Kick)

	r := router.Setup(cfg,
		users,
		handler.NewUserHandler(users),
		handler.NewOrganizationHandler(orgs),
		handler.NewKeyHandler(keys),
		handler.NewTemplateHandler(templates),
		handler.NewContractHandler(contracts),
		handler.NewJobHandler(jobs, orch),
		handler.NewAttachmentHandler(attachments),
	)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		klog.V(6).Info("收到退出信号，停止调度与编排...")
		sched.Stop()
		orch.Stop()
		klog.Flush()
		os.Exit(0)
	}()

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	if cfg.Storage.Type == "minio" {
		ms, err := storage.NewMinioStore(&cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		if err := ms.EnsureBucket(context.Background()); err != nil {
			return nil, err
		}
		return ms, nil
	}
	return storage.NewLocalStore(cfg.Storage.Dir)
}
