package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"lab-backend/internal/catalog"
	"lab-backend/internal/models"
	"lab-backend/pkg/labclient"
)

const envPassword = "LAB_PASSWORD"

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "e-mail do usuário")
	password := fs.String("senha", "", "senha (padrão $"+envPassword+")")
	code := fs.String("codigo", "", "código de dois fatores, se ativado")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv(envPassword)
	}
	if *email == "" || *password == "" {
		fs.Usage()
		return errors.New("e-mail e senha são obrigatórios")
	}

	c, err := labclient.New(a.baseURL, labclient.WithTimeout(a.timeout))
	if err != nil {
		return err
	}
	res, err := c.Login(ctx, *email, *password, *code)
	if err != nil {
		return explain(err)
	}
	if err := a.saveToken(res.Token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Autenticado como %s\n", res.Name)
	return nil
}

func (a *app) materialFlags(name string) (*materialOptions, *flag.FlagSet) {
	fs := a.flags(name)
	o := &materialOptions{}
	fs.StringVar(&o.search, "busca", "", "texto em nome, fabricante ou tipo")
	fs.StringVar(&o.mode, "filtro", "", "all, low_stock, expired ou near_expiry")
	fs.StringVar(&o.kind, "tipo", "", "tipo exato")
	fs.StringVar(&o.sort, "ordenar", "", "nome, validade, estoque ou preco")
	return o, fs
}

type materialOptions struct {
	search, mode, kind, sort string
}

// query validates the options the same way the server does.
func (o *materialOptions) query() (catalog.MaterialQuery, error) {
	mode, err := catalog.ParseFilterMode(o.mode)
	if err != nil {
		return catalog.MaterialQuery{}, err
	}
	key, err := catalog.ParseSortKey(o.sort)
	if err != nil {
		return catalog.MaterialQuery{}, err
	}
	return catalog.MaterialQuery{Search: o.search, Type: o.kind, Mode: mode, Sort: key}, nil
}

func (o *materialOptions) filter() labclient.MaterialFilter {
	return labclient.MaterialFilter{Search: o.search, Mode: o.mode, Type: o.kind, Sort: o.sort}
}

func (a *app) materials(ctx context.Context, args []string) error {
	opts, fs := a.materialFlags("materiais")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	q, err := opts.query()
	if err != nil {
		return err
	}
	c, err := a.client()
	if err != nil {
		return err
	}
	views, err := c.ListMaterials(ctx, opts.filter())
	if err != nil {
		return explain(err)
	}

	// statuses are derived against the local lab date
	items := make([]models.Material, len(views))
	for i, v := range views {
		items[i] = v.Material
	}
	views = catalog.ApplyMaterials(items, q, a.today())

	t := newTable(a.out, "ID", "CÓDIGO", "NOME", "TIPO", "ESTOQUE", "MÍNIMO", "VALIDADE", "STATUS")
	for _, v := range views {
		t.row(strconv.Itoa(v.ID), text(v.Code), v.Name, text(v.Type),
			dec(v.CurrentStock)+" "+v.Unit, dec(v.MinimumStock), date(v.Expiry), v.Status)
	}
	if err := t.flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n%d material(is)\n", len(views))
	return nil
}

func (a *app) baixa(ctx context.Context, args []string) error {
	fs := a.flags("baixa")
	id := fs.Int("id", 0, "id do material")
	code := fs.String("codigo", "", "código do material")
	qty := fs.String("qtd", "", "quantidade a retirar")
	note := fs.String("obs", "", "observação")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if (*id == 0) == (*code == "") {
		fs.Usage()
		return errors.New("informe -id ou -codigo")
	}
	amount, err := parseQuantity(*qty)
	if err != nil {
		return err
	}

	c, err := a.client()
	if err != nil {
		return err
	}
	var res *models.BaixaResult
	if *code != "" {
		res, err = c.BaixaByCode(ctx, *code, amount, *note)
	} else {
		var m *models.MaterialView
		if m, err = c.GetMaterial(ctx, *id); err == nil {
			res, err = c.Baixa(ctx, m.Material, amount, *note)
		}
	}

	var vErr *labclient.ValidationError
	switch {
	case errors.As(err, &vErr):
		return fmt.Errorf("baixa bloqueada: %w", vErr)
	case err != nil:
		if current, ok := labclient.InsufficientStock(err); ok {
			return fmt.Errorf("estoque insuficiente no servidor (estoque atual: %s)", current)
		}
		return explain(err)
	}
	fmt.Fprintf(a.out, "%s Estoque atual: %s\n", res.Message, res.CurrentStock)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	opts, fs := a.materialFlags("exportar")
	out := fs.String("out", "", "arquivo ou diretório de destino (padrão: nome sugerido pelo servidor)")
	pdf := fs.Bool("pdf", false, "gera o relatório em PDF em vez do CSV")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if _, err := opts.query(); err != nil {
		return err
	}
	c, err := a.client()
	if err != nil {
		return err
	}

	download := c.ExportCSV
	if *pdf {
		download = c.ReportPDF
	}
	name, data, err := download(ctx, opts.filter())
	if err != nil {
		return explain(err)
	}

	path := name
	if *out != "" {
		path = *out
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, name)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("gravar %s: %w", path, err)
	}
	fmt.Fprintf(a.out, "Arquivo salvo em %s (%d bytes)\n", path, len(data))
	return nil
}

func (a *app) equipment(ctx context.Context, args []string) error {
	fs := a.flags("equipamentos")
	var f labclient.EquipmentFilter
	fs.StringVar(&f.Search, "busca", "", "texto em nome, código, modelo ou fabricante")
	fs.StringVar(&f.Status, "status", "", "status exato")
	fs.StringVar(&f.Category, "categoria", "", "categoria exata")
	fs.StringVar(&f.Sort, "ordenar", "", "nome, codigo ou aquisicao")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if _, err := catalog.ParseEquipmentSortKey(f.Sort); err != nil {
		return err
	}
	c, err := a.client()
	if err != nil {
		return err
	}
	items, err := c.ListEquipment(ctx, f)
	if err != nil {
		return explain(err)
	}

	t := newTable(a.out, "ID", "CÓDIGO", "NOME", "CATEGORIA", "LOCAL", "STATUS", "MANUT. PENDENTES")
	for _, e := range items {
		t.row(strconv.Itoa(e.ID), e.Code, e.Name, text(e.Category), text(e.Location), e.Status, strconv.Itoa(e.PendingMaintenance))
	}
	return t.flush()
}

func (a *app) maintenance(ctx context.Context, args []string) error {
	fs := a.flags("manutencoes")
	var f labclient.MaintenanceFilter
	fs.StringVar(&f.Search, "busca", "", "texto em descrição, responsável ou equipamento")
	fs.StringVar(&f.Status, "status", "", "agendada, em_andamento, concluida ou cancelada")
	fs.StringVar(&f.Type, "tipo", "", "tipo exato")
	fs.IntVar(&f.EquipmentID, "equipamento", 0, "id do equipamento")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if f.Status != "" && !models.ValidMaintenanceStatus(f.Status) {
		return fmt.Errorf("status inválido: %q", f.Status)
	}
	c, err := a.client()
	if err != nil {
		return err
	}
	items, err := c.ListMaintenance(ctx, f)
	if err != nil {
		return explain(err)
	}

	t := newTable(a.out, "ID", "EQUIPAMENTO", "TIPO", "AGENDADA", "REALIZADA", "PRIORIDADE", "STATUS")
	for _, m := range items {
		t.row(strconv.Itoa(m.ID), text(m.EquipmentName), m.Type, m.ScheduledDate.String(), date(m.PerformedDate), text(m.Priority), m.Status)
	}
	if err := t.flush(); err != nil {
		return err
	}
	counts := catalog.CountMaintenanceByStatus(items)
	parts := make([]string, 0, len(models.MaintenanceStatuses))
	for _, s := range models.MaintenanceStatuses {
		parts = append(parts, fmt.Sprintf("%s=%d", s, counts[s]))
	}
	fmt.Fprintf(a.out, "\n%s\n", strings.Join(parts, " "))
	return nil
}

func (a *app) complete(ctx context.Context, args []string) error {
	fs := a.flags("concluir")
	id := fs.Int("id", 0, "id da manutenção")
	cost := fs.String("custo", "", "custo final")
	notes := fs.String("obs", "", "observações")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		fs.Usage()
		return errors.New("informe -id")
	}
	var amount decimal.NullDecimal
	if *cost != "" {
		d, err := parseQuantity(*cost)
		if err != nil {
			return err
		}
		if d.IsNegative() {
			return errors.New("custo não pode ser negativo")
		}
		amount = decimal.NewNullDecimal(d)
	}

	c, err := a.client()
	if err != nil {
		return err
	}
	m, err := c.CompleteMaintenance(ctx, *id, amount, *notes)
	if err != nil {
		return explain(err)
	}
	fmt.Fprintf(a.out, "Manutenção %d concluída em %s\n", m.ID, date(m.PerformedDate))
	return nil
}

func (a *app) alerts(ctx context.Context, args []string) error {
	fs := a.flags("alertas")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	c, err := a.client()
	if err != nil {
		return err
	}
	items, err := c.Alerts(ctx)
	if err != nil {
		return explain(err)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Nenhum alerta.")
		return nil
	}
	t := newTable(a.out, "STATUS", "CÓDIGO", "NOME", "MENSAGEM")
	for _, al := range items {
		t.row(al.Status, text(al.Code), al.Name, al.Message)
	}
	return t.flush()
}
