package main

import (
	"time"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/csvimport"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/events"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/hierarchy"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/library"
	"github.com/manojSRawat/sunbird-resource-library/internal/editor"
	"github.com/manojSRawat/sunbird-resource-library/internal/ui"
)

// connect wires the editor client, the blob client and the hierarchy cache
// over one rate limited transport.
func connect(cfg config.Config) ui.Services {
	opts := editor.DefaultTransportOptions(cfg.BaseURL, editor.Limit{RPS: cfg.Transport.RPS, Burst: cfg.Transport.Burst})
	opts.RetryMax = cfg.Transport.RetryMax
	if cfg.Transport.BackoffBaseMS > 0 {
		opts.BackoffBase = time.Duration(cfg.Transport.BackoffBaseMS) * time.Millisecond
	}
	if cfg.Transport.BackoffCapMS > 0 {
		opts.BackoffCap = time.Duration(cfg.Transport.BackoffCapMS) * time.Millisecond
	}
	rt := editor.NewRetryingLimiterTransport(opts)

	client := editor.New(editor.Options{
		BaseURL:   cfg.BaseURL,
		Token:     cfg.Token,
		UserToken: cfg.UserToken,
		ChannelID: cfg.ChannelID,
		Timeout:   cfg.Timeout(),
		Transport: rt,
	})
	return ui.Services{
		Hierarchy:  hierarchy.NewCachedSource(client, cfg.HierarchyCacheTTL),
		Search:     client,
		Slots:      client,
		Blob:       editor.NewBlobClient(rt, 0),
		Confirmer:  client,
		Downloader: client,
		Metrics:    opts.Metrics,
	}
}

func newEngine(cfg config.Config, s ui.Services) *library.Engine {
	return library.NewEngine(s.Search, library.Options{
		Targets:      cfg.TargetPrimaryCategories,
		SearchFields: cfg.SearchFields,
	})
}

func newImporter(cfg config.Config, s ui.Services, create bool, sink events.Sink) *csvimport.Machine {
	return csvimport.NewMachine(csvimport.Options{
		CollectionID: cfg.CollectionID,
		CreateMode:   create,
		SampleURL:    cfg.SampleCSVURL,
		Messages: csvimport.Messages{
			SlotFailed:   cfg.Label(config.LabelSlotFailed),
			UploadFailed: cfg.Label(config.LabelUploadFailed),
			ImportFailed: cfg.Label(config.LabelImportFailed),
		},
		Sink:       sink,
		Slots:      s.Slots,
		Blob:       s.Blob,
		Confirmer:  s.Confirmer,
		Downloader: s.Downloader,
	})
}
