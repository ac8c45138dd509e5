package template

import (
	"html/template"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

var Login *template.Template
var Register *template.Template
var Index *template.Template
var Buy *template.Template
var Sell *template.Template
var Quote *template.Template
var Quoted *template.Template
var History *template.Template
var TopUp *template.Template
var Apology *template.Template

var funcMap = template.FuncMap{
	"usd": Usd,
}

// Usd formats a decimal amount as US dollars, like $1,234.56.
func Usd(value decimal.Decimal) string {
	sign := ""

	if value.IsNegative() {
		sign = "-"
		value = value.Neg()
	}

	fixed := value.StringFixed(2)
	whole := fixed[:len(fixed)-3]
	cents := fixed[len(fixed)-3:]

	var builder strings.Builder

	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			builder.WriteByte(',')
		}

		builder.WriteRune(digit)
	}

	return sign + "$" + builder.String() + cents
}

func parse(dir string, filenames ...string) *template.Template {
	paths := make([]string, len(filenames))

	for i, filename := range filenames {
		paths[i] = filepath.Join(dir, filename)
	}

	return template.Must(
		template.New(filenames[0]).Funcs(funcMap).ParseFiles(paths...),
	)
}

// Init parses every page template from the given directory.
func Init(dir string) {
	Login = parse(dir, "base.tmpl", "login.tmpl")
	Register = parse(dir, "base.tmpl", "register.tmpl")
	Index = parse(dir, "base.tmpl", "index.tmpl")
	Buy = parse(dir, "base.tmpl", "buy.tmpl")
	Sell = parse(dir, "base.tmpl", "sell.tmpl")
	Quote = parse(dir, "base.tmpl", "quote.tmpl")
	Quoted = parse(dir, "base.tmpl", "quoted.tmpl")
	History = parse(dir, "base.tmpl", "history.tmpl")
	TopUp = parse(dir, "base.tmpl", "topup.tmpl")
	Apology = parse(dir, "base.tmpl", "apology.tmpl")
}

func Render(tmpl *template.Template, writer io.Writer, data interface{}) {
	tmpl.ExecuteTemplate(writer, "base", data)
}
