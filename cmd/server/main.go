package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesleads/internal/auth"
	"salesleads/internal/config"
	"salesleads/internal/db"
	"salesleads/internal/extauth"
	"salesleads/internal/httpapi"
	"salesleads/internal/importsync"
	"salesleads/internal/service"
	"salesleads/internal/storage"
	"salesleads/internal/store"
)

func main() {
	if err := config.LoadDotEnv(".env.local", ".env"); err != nil {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	blobs, err := storage.New(ctx, storage.Options{
		Backend:  cfg.StorageBackend,
		Root:     cfg.StorageRoot,
		BoltPath: cfg.BoltPath,
		S3Bucket: cfg.S3Bucket,
		S3Prefix: cfg.S3Prefix,
		S3Client: storage.S3ClientConfig{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			ForcePathStyle:  cfg.S3ForcePathStyle,
		},
	})
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	if c, ok := blobs.(io.Closer); ok {
		defer c.Close()
	}

	opts := service.Options{
		SliceSize:      cfg.SliceSize,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	if cfg.LDAPEnabled {
		opts.LDAP = extauth.NewLDAPAuthenticator(extauth.LDAPConfig{
			URL:          cfg.LDAPURL,
			BaseDN:       cfg.LDAPBaseDN,
			BindDN:       cfg.LDAPBindDN,
			BindPassword: cfg.LDAPBindPassword,
			UserFilter:   cfg.LDAPUserFilter,
			UserAttr:     cfg.LDAPUserAttr,
			DisplayAttr:  cfg.LDAPDisplayAttr,
			StartTLS:     cfg.LDAPStartTLS,
			SkipVerify:   cfg.LDAPSkipVerify,
			AdminGroups:  cfg.LDAPAdminGroups,
		})
		log.Printf("LDAP login enabled (%s)", cfg.LDAPURL)
	}

	st := store.New(pool)
	svc := service.New(st, blobs, opts)
	if err := svc.BootstrapAdmin(ctx, log.Default(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	// Import runner/trigger exist even when scheduled imports are off.
	sourceClient := &http.Client{Timeout: cfg.ImportTimeout}
	runner := importsync.NewRunner(
		importsync.NewSource(cfg.CustomersSource, sourceClient),
		importsync.NewSource(cfg.SalesLeadsSource, sourceClient),
		svc.ImportSaver(),
		log.Default(),
	)

	workerCfg := importWorkerConfig(cfg)
	worker := importsync.NewWorker(runner, workerCfg, importsync.ConfigFunc(reloadWorkerConfig), log.Default())
	go worker.Run(ctx)

	trigger := httpapi.NewImportTrigger(runner, cfg.ImportTimeout, log.Default())
	authn := auth.NewAuthenticator(st, cfg.AdminToken)

	api := httpapi.New(cfg, svc, authn, runner, trigger)
	echoServer := api.NewEcho()

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      echoServer,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
		os.Exit(1)
	}
	trigger.Wait()
}

func importWorkerConfig(cfg config.Config) importsync.WorkerConfig {
	return importsync.WorkerConfig{
		Enabled:      cfg.ImportEnabled,
		StartupDelay: cfg.ImportDelay,
		Interval:     cfg.ImportInterval,
		Timeout:      cfg.ImportTimeout,
	}
}

// reloadWorkerConfig re-reads the environment so IMPORT_* changes made by
// the process supervisor apply on the next cycle.
func reloadWorkerConfig(context.Context) (importsync.WorkerConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return importsync.WorkerConfig{}, err
	}
	return importWorkerConfig(cfg), nil
}
