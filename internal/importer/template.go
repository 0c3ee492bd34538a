package importer

import "fmt"

// Field value kinds, used by coercion and validation.
const (
	KindText    = "text"
	KindNumeric = "numeric"
	KindDate    = "date"
)

const (
	TemplateProducts  = "products"
	TemplateSuppliers = "suppliers"
)

// Field is one target field of an import template. Aliases are the
// normalized header names a source column may carry for this field; the
// field's own name is always tried first.
type Field struct {
	Name     string
	Label    string
	Kind     string
	Required bool
	Aliases  []string
}

// Template is a compiled-in import schema. Templates are immutable and
// loaded once at process start.
type Template struct {
	Key    string
	Label  string
	Fields []Field
}

var templates = []*Template{
	{
		Key:   TemplateProducts,
		Label: "Productos",
		Fields: []Field{
			{Name: "name", Label: "Nombre", Kind: KindText, Required: true,
				Aliases: []string{"nombre", "producto", "descripcion", "description", "articulo", "detalle"}},
			{Name: "barcode", Label: "Codigo de barras", Kind: KindText,
				Aliases: []string{"codigo_de_barras", "codigo_barras", "cod_barra", "ean", "ean13", "upc"}},
			{Name: "internal_code", Label: "Codigo interno", Kind: KindText,
				Aliases: []string{"codigo", "codigo_interno", "codigo_articulo", "sku", "cod", "plu"}},
			{Name: "unit_price", Label: "Precio unitario", Kind: KindNumeric,
				Aliases: []string{"precio", "precio_unitario", "precio_venta", "pvp", "price"}},
			{Name: "quantity", Label: "Cantidad", Kind: KindNumeric,
				Aliases: []string{"cantidad", "cant", "qty", "unidades"}},
			{Name: "subtotal", Label: "Importe", Kind: KindNumeric,
				Aliases: []string{"total", "importe", "monto", "total_linea", "importe_total"}},
			{Name: "stock", Label: "Stock", Kind: KindNumeric,
				Aliases: []string{"existencias", "stock_actual", "inventario"}},
			{Name: "category", Label: "Categoria", Kind: KindText,
				Aliases: []string{"categoria", "rubro", "familia"}},
			{Name: "supplier_name", Label: "Proveedor", Kind: KindText,
				Aliases: []string{"proveedor", "supplier", "distribuidor"}},
			{Name: "sold_at", Label: "Fecha de venta", Kind: KindDate,
				Aliases: []string{"fecha", "fecha_venta", "date", "fecha_ultima_venta", "vendido"}},
		},
	},
	{
		Key:   TemplateSuppliers,
		Label: "Proveedores",
		Fields: []Field{
			{Name: "name", Label: "Nombre", Kind: KindText, Required: true,
				Aliases: []string{"proveedor", "razon_social", "nombre", "supplier", "empresa"}},
			{Name: "tax_id", Label: "CUIT", Kind: KindText,
				Aliases: []string{"cuit", "cuil", "rut", "nif", "identificacion_fiscal"}},
			{Name: "phone", Label: "Telefono", Kind: KindText,
				Aliases: []string{"telefono", "tel", "celular", "movil"}},
			{Name: "email", Label: "Email", Kind: KindText,
				Aliases: []string{"correo", "mail", "e_mail"}},
			{Name: "address", Label: "Direccion", Kind: KindText,
				Aliases: []string{"direccion", "domicilio"}},
			{Name: "contact", Label: "Contacto", Kind: KindText,
				Aliases: []string{"contacto", "persona_contacto", "referente"}},
		},
	},
}

// Templates returns every registered template.
func Templates() []*Template {
	return templates
}

// TemplateByKey looks up a template by its key.
func TemplateByKey(key string) (*Template, error) {
	for _, t := range templates {
		if t.Key == key {
			return t, nil
		}
	}
	return nil, NewError(TagUnknownTemplate, fmt.Sprintf("unknown template %q", key))
}

// Field returns the template field with the given name.
func (t *Template) Field(name string) (*Field, bool) {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], true
		}
	}
	return nil, false
}

// RequiredFields lists the names of the template's required fields.
func (t *Template) RequiredFields() []string {
	var out []string
	for _, f := range t.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}
