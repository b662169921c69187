// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/retail-ars/internal/ars"
	"github.com/andresuchdata/retail-ars/internal/channel"
	"github.com/andresuchdata/retail-ars/internal/config"
	"github.com/andresuchdata/retail-ars/internal/domain"
	"github.com/andresuchdata/retail-ars/internal/ingest"
	"github.com/andresuchdata/retail-ars/internal/recon"
	"github.com/andresuchdata/retail-ars/internal/report"
	"github.com/andresuchdata/retail-ars/internal/repository/postgres"
	"github.com/andresuchdata/retail-ars/internal/storage"
	"github.com/andresuchdata/retail-ars/pkg/logger"
)

// ErrNoValidData means no channel produced a single usable record, which is
// the only condition that fails a whole run. Individual file failures are
// logged and skipped.
var ErrNoValidData = errors.New("no channel produced valid data")

// Kind selects which registry and canonical subset an extraction run uses.
type Kind string

const (
	KindInventory Kind = "inventory"
	KindSales     Kind = "sales"
)

// Pipeline wires extraction, reconciliation, analysis and reporting.
// Repo and Archive are optional; nil disables DB persistence and report
// upload respectively.
type Pipeline struct {
	Cfg        *config.Config
	Inventory  *channel.Registry
	Sales      *channel.Registry
	Reconciler *recon.Reconciler
	Expander   *recon.Expander
	Planogram  map[[2]string]domain.PlanogramEntry
	SKUMaster  map[string]domain.SKUMaster
	Repo       *postgres.RetailARSRepository
	Archive    storage.ObjectStorage
}

// New builds a pipeline from config, loading the registries and master data
// files it references.
func New(cfg *config.Config) (*Pipeline, error) {
	inv, err := channel.LoadRegistry(cfg.App.InventoryConfig)
	if err != nil {
		return nil, err
	}
	sales, err := channel.LoadRegistry(cfg.App.SalesConfig)
	if err != nil {
		return nil, err
	}
	mappings, err := ingest.LoadSKUMappings(cfg.App.SKUMapPath)
	if err != nil {
		return nil, err
	}
	bundles, err := ingest.LoadBundleMap(cfg.App.BundleMapPath)
	if err != nil {
		return nil, err
	}
	planogram, err := ingest.LoadPlanogram(cfg.App.StoreMapPath, cfg.App.PlanogramPath)
	if err != nil {
		return nil, err
	}
	master, err := ingest.LoadSKUMaster(cfg.App.SKUMasterPath)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		Cfg:        cfg,
		Inventory:  inv,
		Sales:      sales,
		Reconciler: recon.NewReconciler(mappings),
		Expander:   recon.NewExpander(bundles),
		Planogram:  ingest.PlanogramIndex(planogram),
		SKUMaster:  master,
	}, nil
}

func (p *Pipeline) registry(kind Kind) *channel.Registry {
	if kind == KindSales {
		return p.Sales
	}
	return p.Inventory
}

// RunExtraction walks the input directory, detects each file's channel,
// maps it to canonical records and applies SKU reconciliation and bundle
// expansion. Files that fail to read, match no channel, or map no columns
// are skipped with a log line. The result is grouped by channel.
func (p *Pipeline) RunExtraction(kind Kind) (map[string][]domain.ChannelRecord, error) {
	reg := p.registry(kind)
	byChannel := make(map[string][]domain.ChannelRecord)

	entries, err := os.ReadDir(p.Cfg.App.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".xlsx", ".xlsm", ".xls", ".csv":
		default:
			continue
		}

		ch, ok := reg.Detect(name)
		if !ok {
			logger.Log.Warn().Str("file", name).Str("kind", string(kind)).Msg("no channel matched file name, skipping")
			continue
		}
		schema, _ := reg.Schema(ch)

		t, err := ingest.ReadTable(filepath.Join(p.Cfg.App.InputDir, name), schema.Sheet)
		if err != nil {
			log := logger.WithChannel(ch)
			log.Error().Err(err).Str("file", name).Msg("unreadable source file, skipping")
			continue
		}
		records, err := channel.MapTable(ch, schema, t)
		if err != nil {
			log := logger.WithChannel(ch)
			log.Error().Err(err).Str("file", name).Msg("mapping failed, skipping file")
			continue
		}
		byChannel[ch] = append(byChannel[ch], records...)
		log := logger.WithChannel(ch)
		log.Info().Str("file", name).Int("records", len(records)).Msg("file extracted")
	}

	total := 0
	for ch, records := range byChannel {
		records = p.Reconciler.Resolve(records)
		records = p.Expander.Expand(records)
		byChannel[ch] = records
		total += len(records)
	}
	if total == 0 {
		return nil, ErrNoValidData
	}

	out := filepath.Join(p.Cfg.App.OutputDir, fmt.Sprintf("consolidated_%s.csv", kind))
	if err := report.WriteConsolidated(out, flatten(byChannel)); err != nil {
		return nil, err
	}
	return byChannel, nil
}

func flatten(byChannel map[string][]domain.ChannelRecord) []domain.ChannelRecord {
	channels := make([]string, 0, len(byChannel))
	for ch := range byChannel {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	var out []domain.ChannelRecord
	for _, ch := range channels {
		out = append(out, byChannel[ch]...)
	}
	return out
}

// ChannelInputs converts canonical extraction output into the cleaned sales
// and stock rows the aggregator consumes. The analysis SKU is the master
// SKU when mapped, else the raw channel SKU. Sales rows with no parseable
// date are dropped; inventory is pre-aggregated to (store, sku).
func ChannelInputs(salesRecords, stockRecords []domain.ChannelRecord) ([]domain.SalesRecord, []domain.StockRecord) {
	var sales []domain.SalesRecord
	dropped := 0
	for _, r := range salesRecords {
		d, err := ingest.ParseDate(r.Date)
		if err != nil {
			dropped++
			continue
		}
		sales = append(sales, domain.SalesRecord{
			StoreID:    r.Location,
			SKUID:      analysisSKU(r),
			Date:       d,
			SalesUnits: r.Quantity,
			SalesValue: r.Value,
		})
	}
	if dropped > 0 {
		logger.Log.Warn().Int("dropped", dropped).Msg("sales records with unparseable dates excluded")
	}

	sums := make(map[[2]string]float64)
	for _, r := range stockRecords {
		sums[[2]string{r.Location, analysisSKU(r)}] += r.Quantity
	}
	stock := make([]domain.StockRecord, 0, len(sums))
	for k, qty := range sums {
		stock = append(stock, domain.StockRecord{StoreID: k[0], SKUID: k[1], CurrentStock: qty})
	}
	sort.Slice(stock, func(i, j int) bool {
		if stock[i].StoreID != stock[j].StoreID {
			return stock[i].StoreID < stock[j].StoreID
		}
		return stock[i].SKUID < stock[j].SKUID
	})
	return sales, stock
}

func analysisSKU(r domain.ChannelRecord) string {
	if r.SKUMapped && r.MasterSKU != "" {
		return r.MasterSKU
	}
	return r.ChannelSKU
}

// AnalyzeChannel runs the full ARS analysis for one channel and writes the
// per-channel reports. When a repository is configured, metrics replace the
// channel's rows in retail_ars; when archive storage is configured, the
// workbook is uploaded.
func (p *Pipeline) AnalyzeChannel(ctx context.Context, ch string, sales []domain.SalesRecord, stock []domain.StockRecord) error {
	log := logger.WithChannel(ch)
	if len(sales) == 0 && len(stock) == 0 {
		log.Warn().Msg("channel has no analyzable data")
		return nil
	}

	metrics, noSales := ars.Aggregate(sales, stock)
	ars.Segment(metrics, p.Planogram, p.SKUMaster)
	for i := range metrics {
		metrics[i].Channel = ch
	}
	p.enrichNoSales(ch, noSales)

	recs := ars.Recommend(metrics)
	summary := ars.Summarize(metrics)

	outDir := filepath.Join(p.Cfg.App.OutputDir, ch)
	if err := report.WriteStoreMetrics(filepath.Join(outDir, "store_metric.csv"), metrics); err != nil {
		return err
	}
	if err := report.WriteRecommendations(filepath.Join(outDir, "sku_recommendations.csv"), recs); err != nil {
		return err
	}
	if err := report.WriteNoSales(filepath.Join(outDir, "no_sale_inv.csv"), noSales); err != nil {
		return err
	}
	workbook := filepath.Join(outDir, "retail_ars.xlsx")
	if err := report.WriteWorkbook(workbook, metrics, noSales); err != nil {
		return err
	}
	if err := report.WriteSummary(filepath.Join(outDir, "analysis_summary.txt"), summary); err != nil {
		return err
	}

	for _, r := range ars.CriticalInsights(metrics, recs) {
		log.Info().
			Str("priority", r.Priority).
			Str("store_id", r.StoreID).
			Str("sku_id", r.SKUID).
			Float64("revenue_loss", r.PotentialRevLoss).
			Msg(r.Action)
	}

	if p.Repo != nil {
		if err := p.Repo.ReplaceChannelMetrics(ctx, ch, metrics); err != nil {
			return fmt.Errorf("persist channel %s: %w", ch, err)
		}
	}
	if p.Archive != nil {
		object := fmt.Sprintf("%s/retail_ars.xlsx", ch)
		if err := p.Archive.Upload(ctx, workbook, object); err != nil {
			log.Warn().Err(err).Msg("report archive upload failed")
		}
	}

	log.Info().
		Int("pairs", len(metrics)).
		Int("no_sales", len(noSales)).
		Int("recommendations", len(recs)).
		Msg("channel analysis complete")
	return nil
}

func (p *Pipeline) enrichNoSales(ch string, items []domain.NoSaleItem) {
	for i := range items {
		n := &items[i]
		n.Channel = ch
		if e, ok := p.Planogram[[2]string{n.StoreID, n.SKUID}]; ok {
			n.StoreName = e.StoreName
			n.MDQ = e.MDQ
		}
		if m, ok := p.SKUMaster[n.SKUID]; ok {
			n.SKUName = m.SKUName
			n.BrandLine = m.BrandLine
			n.MRP = m.MRP
		}
	}
}

// Run is the full batch: extract both kinds from the input directory, then
// analyze each channel. Channels are independent and run in parallel with a
// concurrency cap; work within a channel stays strictly sequential.
func (p *Pipeline) Run(ctx context.Context) error {
	stockByChannel, err := p.RunExtraction(KindInventory)
	if err != nil && !errors.Is(err, ErrNoValidData) {
		return err
	}
	salesByChannel, err := p.RunExtraction(KindSales)
	if err != nil && !errors.Is(err, ErrNoValidData) {
		return err
	}
	if len(stockByChannel) == 0 && len(salesByChannel) == 0 {
		return ErrNoValidData
	}

	channels := map[string]bool{}
	for ch := range stockByChannel {
		channels[ch] = true
	}
	for ch := range salesByChannel {
		channels[ch] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	limit := p.Cfg.App.ChannelConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)
	for ch := range channels {
		g.Go(func() error {
			sales, stock := ChannelInputs(salesByChannel[ch], stockByChannel[ch])
			return p.AnalyzeChannel(gctx, ch, sales, stock)
		})
	}
	return g.Wait()
}
