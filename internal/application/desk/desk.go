// Package desk assembles the module services into one desk and exposes
// every listing page behind a single non-generic interface.
package desk

import (
	"context"
	"sort"
	"time"

	accountingapp "github.com/kidusabdula/versaforge-erp-sub001/internal/application/accounting"
	assetsapp "github.com/kidusabdula/versaforge-erp-sub001/internal/application/assets"
	crmapp "github.com/kidusabdula/versaforge-erp-sub001/internal/application/crm"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/records"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/views"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/export"
)

// Desk holds the services of every module.
type Desk struct {
	Options    *records.OptionsService
	Accounting *accountingapp.Service
	Assets     *assetsapp.Service
	CRM        *crmapp.Service

	pages map[string]Page
	order []string
}

// New builds the module services on deps.
func New(deps records.Deps, options *records.OptionsService) *Desk {
	d := &Desk{
		Options:    options,
		Accounting: accountingapp.NewService(deps, options),
		Assets:     assetsapp.NewService(deps, options),
		CRM:        crmapp.NewService(deps, options),
		pages:      make(map[string]Page),
	}
	d.add(PageOf(d.Accounting.Payments))
	d.add(PageOf(d.Assets.Assets))
	d.add(PageOf(d.Assets.Maintenance))
	d.add(PageOf(d.Assets.Movements))
	d.add(PageOf(d.Assets.Repairs))
	d.add(PageOf(d.Assets.Adjustments))
	d.add(PageOf(d.CRM.Leads))
	d.add(PageOf(d.CRM.Opportunities))
	d.add(PageOf(d.CRM.Quotations))
	d.add(PageOf(d.CRM.SalesOrders))
	d.add(PageOf(d.CRM.Activities))
	d.add(PageOf(d.CRM.Communications))
	return d
}

func (d *Desk) add(p Page) {
	d.pages[p.Name()] = p
	d.order = append(d.order, p.Name())
}

// Page returns the page called name, e.g. "crm/opportunities".
func (d *Desk) Page(name string) (Page, bool) {
	p, ok := d.pages[name]
	return p, ok
}

// Pages returns the pages in module order.
func (d *Desk) Pages() []Page {
	out := make([]Page, len(d.order))
	for i, name := range d.order {
		out[i] = d.pages[name]
	}
	return out
}

// Names returns the sorted page names.
func (d *Desk) Names() []string {
	names := append([]string(nil), d.order...)
	sort.Strings(names)
	return names
}

// Listing is a loaded page with its rows already rendered as table cells.
type Listing struct {
	Title     string
	Table     export.Table
	Summary   any
	Total     int
	Shown     int
	Stale     bool
	Notice    string
	FetchedAt time.Time
	Query     string
}

// Page is a listing page of any record type.
type Page interface {
	Name() string
	Title() string
	FilterKeys() []string
	List(ctx context.Context, req views.ListRequest) (Listing, error)
	Export(ctx context.Context, req views.ListRequest) (export.Table, error)
}

type page[T listview.Record] struct {
	lister *views.Lister[T]
}

// PageOf adapts a resource to Page.
func PageOf[T listview.Record](r *records.Resource[T]) Page {
	return page[T]{lister: r.Lister}
}

func (p page[T]) Name() string         { return p.lister.Page().Name }
func (p page[T]) Title() string        { return p.lister.Page().Title }
func (p page[T]) FilterKeys() []string { return p.lister.Page().FilterKeys }

func (p page[T]) List(ctx context.Context, req views.ListRequest) (Listing, error) {
	res, err := p.lister.List(ctx, req)
	if err != nil {
		return Listing{}, err
	}
	items := make([]T, len(res.Items))
	for i, row := range res.Items {
		items[i] = row.Record
	}
	def := p.lister.Page()
	return Listing{
		Title:     def.Title,
		Table:     export.Build(def.Title, def.Columns, items),
		Summary:   res.Summary,
		Total:     res.Total,
		Shown:     res.Shown,
		Stale:     res.Stale,
		Notice:    res.Notice,
		FetchedAt: res.FetchedAt,
		Query:     res.Query,
	}, nil
}

func (p page[T]) Export(ctx context.Context, req views.ListRequest) (export.Table, error) {
	return p.lister.Export(ctx, req)
}
