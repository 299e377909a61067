package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// Deps dependencias del caso de uso de documentos. Cache es opcional.
type Deps struct {
	TxRunner      TxRunner
	DocumentRepo  repository.DocumentRepository
	StockRepo     repository.StockRepository
	MovementRepo  repository.StockMovementRepository
	WarehouseRepo repository.WarehouseRepository
	ItemRepo      repository.ItemRepository
	SequenceRepo  repository.SequenceRepository
	RateRepo      repository.ExchangeRateRepository
	Cache         SummaryCache
	Logger        *logger.Logger
}

// DocumentUseCase orquesta documentos de inventario: creación con código, transiciones
// sobre el ledger, resúmenes de stock, diario de movimientos y tasa de cambio.
type DocumentUseCase struct {
	txRunner      TxRunner
	docRepo       repository.DocumentRepository
	stockRepo     repository.StockRepository
	movRepo       repository.StockMovementRepository
	warehouseRepo repository.WarehouseRepository
	itemRepo      repository.ItemRepository
	codes         *CodeGenerator
	machine       *DocumentStateMachine
	rates         *ExchangeRateStore
	cache         SummaryCache
	log           *logger.Logger
}

// NewDocumentUseCase construye el caso de uso y sus componentes (ledger, validador, máquina de estados).
func NewDocumentUseCase(d Deps) *DocumentUseCase {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	ledger := NewStockLedger(d.StockRepo)
	return &DocumentUseCase{
		txRunner:      d.TxRunner,
		docRepo:       d.DocumentRepo,
		stockRepo:     d.StockRepo,
		movRepo:       d.MovementRepo,
		warehouseRepo: d.WarehouseRepo,
		itemRepo:      d.ItemRepo,
		codes:         NewCodeGenerator(d.SequenceRepo),
		machine:       NewDocumentStateMachine(d.TxRunner, ledger, NewStockValidator()),
		rates:         NewExchangeRateStore(d.RateRepo),
		cache:         d.Cache,
		log:           log,
	}
}

// CreateDocument valida cabecera y líneas, verifica que bodegas y artículos existan,
// asigna el código y persiste el documento en estado pending.
// En facturas, una línea sin unit_price toma el precio del artículo.
func (uc *DocumentUseCase) CreateDocument(ctx context.Context, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	doc := &entity.Document{
		Kind:                   entity.DocumentKind(in.Kind),
		Status:                 entity.StatusPending,
		WarehouseID:            in.WarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		AdjustmentType:         entity.AdjustmentType(in.AdjustmentType),
		Notes:                  in.Notes,
		Lines:                  make([]entity.LineItem, 0, len(in.Items)),
	}
	for i, it := range in.Items {
		doc.Lines = append(doc.Lines, entity.LineItem{
			Position:  i + 1,
			ItemID:    it.ItemID,
			Amount:    it.Amount,
			UnitPrice: it.UnitPrice,
		})
	}
	if doc.Kind != entity.KindInvoice {
		for i := range doc.Lines {
			doc.Lines[i].UnitPrice = decimal.Zero
		}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	for _, whID := range doc.WarehouseIDs() {
		wh, err := uc.warehouseRepo.GetByID(ctx, whID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, &domain.NotFoundError{Resource: "bodega", ID: whID}
		}
	}

	ids := make([]int64, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		ids = append(ids, l.ItemID)
	}
	items, err := uc.itemRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range doc.Lines {
		l := &doc.Lines[i]
		item, ok := items[l.ItemID]
		if !ok {
			return nil, &domain.NotFoundError{Resource: "artículo", ID: l.ItemID}
		}
		l.ItemName = item.Name
		if doc.Kind == entity.KindInvoice && l.UnitPrice.IsZero() {
			l.UnitPrice = item.Price
		}
	}

	code, err := uc.codes.Next(ctx, doc.Kind.Prefix())
	if err != nil {
		return nil, err
	}
	doc.Code = code
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	err = uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		_ repository.StockRepository,
		_ repository.StockMovementRepository,
	) error {
		return docRepo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("document_id", doc.ID).
		Str("code", doc.Code).
		Str("kind", string(doc.Kind)).
		Int("lines", len(doc.Lines)).
		Msg("documento creado")
	return uc.toResponse(ctx, doc)
}

// GetDocument devuelve el documento con sus líneas (y totales si es factura).
func (uc *DocumentUseCase) GetDocument(ctx context.Context, id int64) (*dto.DocumentResponse, error) {
	doc, err := uc.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &domain.NotFoundError{Resource: "documento", ID: id}
	}
	return uc.toResponse(ctx, doc)
}

// TransitionDocument cambia el estado del documento (pending <-> applied) aplicando o
// revirtiendo su efecto sobre el ledger. Tras el Commit invalida el caché de resúmenes.
func (uc *DocumentUseCase) TransitionDocument(ctx context.Context, id int64, status string) (*dto.DocumentResponse, error) {
	target := entity.DocumentStatus(status)
	res, err := uc.machine.Transition(ctx, id, target)
	if err != nil {
		ev := uc.log.Warn()
		if !isExpected(err) {
			ev = uc.log.Error()
		}
		ev.Err(err).Int64("document_id", id).Str("to", status).Msg("transición rechazada")
		return nil, err
	}

	doc := res.Document
	uc.log.Info().
		Int64("document_id", doc.ID).
		Str("code", doc.Code).
		Str("kind", string(doc.Kind)).
		Str("from", string(res.From)).
		Str("to", string(doc.Status)).
		Str("transaction_id", res.TransactionID).
		Int("movements", len(res.Movements)).
		Msg("transición aplicada")

	uc.invalidate(ctx, res.Movements)
	return uc.toResponse(ctx, doc)
}

// StockSummaryFilter exactamente uno de ItemID o WarehouseID.
type StockSummaryFilter struct {
	ItemID      int64
	WarehouseID int64
	Page        dto.PageRequest
}

// GetStockSummary saldos de un artículo en todas las bodegas, o de todos los artículos de una bodega.
func (uc *DocumentUseCase) GetStockSummary(ctx context.Context, f StockSummaryFilter) (*dto.StockSummaryResponse, error) {
	if (f.ItemID > 0) == (f.WarehouseID > 0) {
		return nil, fmt.Errorf("%w: indique item_id o warehouse_id", domain.ErrInvalidInput)
	}
	f.Page.DefaultPage()

	var scope, field string
	if f.ItemID > 0 {
		scope, field = itemScope(f.ItemID), "all"
	} else {
		scope = warehouseScope(f.WarehouseID)
		field = strconv.Itoa(f.Page.Limit) + ":" + strconv.Itoa(f.Page.Offset)
	}
	// La generación se lee antes de consultar el store: si una transición invalida el scope
	// mientras tanto, Set descarta este resumen.
	cacheable := false
	var generation int64
	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx, scope, field)
		switch {
		case err != nil:
			uc.log.Warn().Err(err).Str("scope", scope).Msg("caché de stock no disponible")
		case ok:
			return cached, nil
		default:
			generation, err = uc.cache.Generation(ctx, scope)
			if err != nil {
				uc.log.Warn().Err(err).Str("scope", scope).Msg("caché de stock no disponible")
			} else {
				cacheable = true
			}
		}
	}

	out := &dto.StockSummaryResponse{ItemID: f.ItemID, WarehouseID: f.WarehouseID, Total: decimal.Zero}
	if f.WarehouseID > 0 {
		out.Page = &dto.PageResponse{Limit: f.Page.Limit, Offset: f.Page.Offset}
	}
	rows, err := uc.summaryRows(ctx, f)
	if err != nil {
		return nil, err
	}

	out.Balances = make([]dto.StockBalanceResponse, 0, len(rows))
	for _, r := range rows {
		out.Total = out.Total.Add(r.Quantity)
		out.Balances = append(out.Balances, dto.StockBalanceResponse{
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			ItemID:        r.ItemID,
			ItemName:      r.ItemName,
			Quantity:      r.Quantity,
			UpdatedAt:     r.UpdatedAt,
		})
	}

	if cacheable {
		if err := uc.cache.Set(ctx, scope, field, generation, out); err != nil {
			uc.log.Warn().Err(err).Str("scope", scope).Msg("no se pudo guardar en caché")
		}
	}
	return out, nil
}

func (uc *DocumentUseCase) summaryRows(ctx context.Context, f StockSummaryFilter) ([]*entity.StockSummaryRow, error) {
	if f.ItemID > 0 {
		item, err := uc.itemRepo.GetByID(ctx, f.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, &domain.NotFoundError{Resource: "artículo", ID: f.ItemID}
		}
		return uc.stockRepo.ListByItem(ctx, f.ItemID)
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, f.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, &domain.NotFoundError{Resource: "bodega", ID: f.WarehouseID}
	}
	return uc.stockRepo.ListByWarehouse(ctx, f.WarehouseID, f.Page.Limit, f.Page.Offset)
}

// ListMovements consulta el diario de movimientos con filtros opcionales.
func (uc *DocumentUseCase) ListMovements(ctx context.Context, f repository.MovementFilter) (*dto.StockMovementListResponse, error) {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, fmt.Errorf("%w: from posterior a to", domain.ErrInvalidInput)
	}
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset

	list, err := uc.movRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.StockMovementListResponse{
		Items: make([]dto.StockMovementResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}
	for _, m := range list {
		out.Items = append(out.Items, dto.StockMovementResponse{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			DocumentID:    m.DocumentID,
			DocumentKind:  string(m.DocumentKind),
			DocumentCode:  m.DocumentCode,
			WarehouseID:   m.WarehouseID,
			ItemID:        m.ItemID,
			Quantity:      m.Quantity,
			BalanceAfter:  m.BalanceAfter,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out, nil
}

// GetExchangeRate devuelve la tasa vigente.
func (uc *DocumentUseCase) GetExchangeRate(ctx context.Context) (*dto.ExchangeRateResponse, error) {
	rate, err := uc.rates.Current(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ExchangeRateResponse{Rate: rate.Rate, UpdatedAt: rate.UpdatedAt}, nil
}

// UpdateExchangeRate reemplaza la tasa vigente.
func (uc *DocumentUseCase) UpdateExchangeRate(ctx context.Context, rate decimal.Decimal) (*dto.ExchangeRateResponse, error) {
	er, err := uc.rates.Update(ctx, rate)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("rate", er.Rate.StringFixed(4)).Msg("tasa de cambio actualizada")
	return &dto.ExchangeRateResponse{Rate: er.Rate, UpdatedAt: er.UpdatedAt}, nil
}

func (uc *DocumentUseCase) toResponse(ctx context.Context, doc *entity.Document) (*dto.DocumentResponse, error) {
	out := &dto.DocumentResponse{
		ID:                     doc.ID,
		Kind:                   string(doc.Kind),
		Code:                   doc.Code,
		Status:                 string(doc.Status),
		WarehouseID:            doc.WarehouseID,
		DestinationWarehouseID: doc.DestinationWarehouseID,
		AdjustmentType:         string(doc.AdjustmentType),
		Notes:                  doc.Notes,
		Items:                  make([]dto.LineItemResponse, 0, len(doc.Lines)),
		AppliedAt:              doc.AppliedAt,
		CreatedAt:              doc.CreatedAt,
		UpdatedAt:              doc.UpdatedAt,
	}
	for _, l := range doc.Lines {
		line := dto.LineItemResponse{ID: l.ID, ItemID: l.ItemID, ItemName: l.ItemName, Amount: l.Amount}
		if doc.Kind == entity.KindInvoice {
			line.UnitPrice = l.UnitPrice
			line.Subtotal = l.Subtotal().Round(2)
		}
		out.Items = append(out.Items, line)
	}
	if doc.Kind == entity.KindInvoice {
		net := doc.NetTotal()
		converted, rate, err := uc.rates.Convert(ctx, net)
		if err != nil {
			return nil, err
		}
		out.Totals = &dto.TotalsResponse{NetTotal: net, ExchangeRate: rate, ConvertedTotal: converted}
	}
	return out, nil
}

func (uc *DocumentUseCase) invalidate(ctx context.Context, movements []*entity.StockMovement) {
	if uc.cache == nil || len(movements) == 0 {
		return
	}
	seen := make(map[string]struct{})
	scopes := make([]string, 0, len(movements)*2)
	for _, m := range movements {
		for _, s := range []string{itemScope(m.ItemID), warehouseScope(m.WarehouseID)} {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			scopes = append(scopes, s)
		}
	}
	if err := uc.cache.Invalidate(ctx, scopes...); err != nil {
		uc.log.Warn().Err(err).Strs("scopes", scopes).Msg("no se pudo invalidar caché de stock")
	}
}

func itemScope(id int64) string      { return "item:" + strconv.FormatInt(id, 10) }
func warehouseScope(id int64) string { return "warehouse:" + strconv.FormatInt(id, 10) }

// isExpected errores de negocio que no indican falla del sistema.
func isExpected(err error) bool {
	return errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		domain.IsRetryable(err)
}
