package gen

import (
	"strings"

	"adapter-generator/internal/plan"
	"adapter-generator/internal/shape"
)

// synthesizer emits the statement lines of one adapter function body.
// Each element is a complete source line, indented relative to the
// function body; blocks carry their own inner tabs.
type synthesizer struct {
	sp       *plan.StructPlan
	fallible map[string]bool
	comments bool
}

// conv is a conversion expression plus whether evaluating it can fail.
type conv struct {
	expr     string
	fallible bool
}

func (s *synthesizer) fromWireBody() []string {
	var lines []string

	for i := range s.sp.Fields {
		fp := &s.sp.Fields[i]

		stmts := s.fromWireField(fp)
		if len(stmts) == 0 {
			continue
		}

		if s.comments && fp.Explanation != "" {
			lines = append(lines, "// "+fp.Name+": "+fp.Explanation)
		}

		lines = append(lines, stmts...)
	}

	return lines
}

func (s *synthesizer) toWireBody() []string {
	var lines []string

	for i := range s.sp.Fields {
		fp := &s.sp.Fields[i]

		stmts := s.toWireField(fp)
		if len(stmts) == 0 {
			continue
		}

		lines = append(lines, stmts...)
	}

	return lines
}

func (s *synthesizer) fromWireField(fp *plan.FieldPlan) []string {
	wire := "in." + goName(fp.WireName)
	dst := "out." + fp.Name

	switch fp.Strategy {
	case plan.StrategyIgnore:
		return nil

	case plan.StrategyCustom:
		if fp.FromWireFn != "" {
			return []string{dst + " = " + fp.FromWireFn + "(" + wire + ")"}
		}
		// Missing direction falls back to a plain conversion.
		return []string{dst + " = " + castExpr(fp.TypeText, wire)}

	case plan.StrategyDirectAssign:
		return []string{dst + " = " + wire}

	case plan.StrategyDirectConvert:
		return s.assignConverted(fp, dst, s.scalarFromWire(fp.Shape, wire))

	case plan.StrategyTransparent:
		if !fp.Wire.IsOptional() {
			return []string{dst + " = " + fp.Shape.Name + "(" + wire + ")"}
		}

		return s.unwrapFromWire(fp, dst, wire, fp.Shape)

	case plan.StrategyOptionUnwrap:
		return s.unwrapFromWire(fp, dst, wire, fp.Shape)

	case plan.StrategyOptionWrap:
		return s.wrapFromWire(fp, dst, wire)

	case plan.StrategyOptionMap:
		return s.mapFromWire(fp, dst, wire)

	case plan.StrategyCollect:
		return s.collectFromWire(fp, dst, wire)

	case plan.StrategyCollectMapOption:
		return s.collectMapOptionFromWire(fp, dst, wire)

	case plan.StrategyCollectDirect:
		return []string{dst + " = append(" + fp.TypeText + "(nil), " + wire + "...)"}
	}

	return nil
}

// scalarFromWire builds the wire-to-domain conversion expression for a
// single non-sequence value.
func (s *synthesizer) scalarFromWire(sh shape.Shape, expr string) conv {
	switch sh.Kind {
	case shape.KindStruct:
		base := baseName(sh.Name)
		return conv{expr: base + "FromWire(" + expr + ")", fallible: s.fallible[base]}

	case shape.KindEnum:
		return conv{expr: baseName(sh.Name) + "FromWire(" + expr + ")"}

	case shape.KindWrapper:
		return conv{expr: sh.Name + "(" + expr + ")"}

	default:
		return conv{expr: expr}
	}
}

// assignConverted renders `dst = expr`, expanded into an error-checked
// form when the conversion call can fail.
func (s *synthesizer) assignConverted(fp *plan.FieldPlan, dst string, c conv) []string {
	if !c.fallible {
		return []string{dst + " = " + c.expr}
	}

	v := varName(fp.Name)

	return []string{
		v + ", err := " + c.expr,
		"if err != nil {",
		"\treturn " + s.zeroValue() + ", err",
		"}",
		dst + " = " + v,
	}
}

// unwrapFromWire handles an optional wire value flowing into a required
// domain field, including the transparent-wrapper variant. The error
// mode decides what happens when the value is absent.
func (s *synthesizer) unwrapFromWire(fp *plan.FieldPlan, dst, wire string, sh shape.Shape) []string {
	// A required wire value is always present, so the absence handling
	// never runs and the accessor is not pointer-shaped.
	if !fp.Wire.IsOptional() {
		return s.assignConverted(fp, dst, s.scalarFromWire(sh, wire))
	}

	val := "*" + wire
	if sh.Kind == shape.KindStruct {
		val = wire
	}

	assign := s.assignConverted(fp, dst, s.scalarFromWire(sh, val))

	switch fp.ErrorMode {
	case plan.ErrorModePanic:
		lines := []string{
			"if " + wire + " == nil {",
			"\tpanic(\"" + s.sp.Name + "." + fp.Name + " is required but the wire value is missing\")",
			"}",
		}

		return append(lines, assign...)

	case plan.ErrorModeError:
		lines := []string{
			"if " + wire + " == nil {",
			"\treturn " + s.zeroValue() + ", " + s.errorExpr(fp),
			"}",
		}

		return append(lines, assign...)

	case plan.ErrorModeDefault:
		if fp.DefaultFn != "" {
			lines := []string{
				"if " + wire + " == nil {",
				"\t" + dst + " = " + fp.DefaultFn + "()",
				"} else {",
			}
			lines = append(lines, indent(assign)...)

			return append(lines, "}")
		}

		// Zero-value default: absent means the field stays zero.
		lines := []string{"if " + wire + " != nil {"}
		lines = append(lines, indent(assign)...)

		return append(lines, "}")

	default:
		lines := []string{"if " + wire + " != nil {"}
		lines = append(lines, indent(assign)...)

		return append(lines, "}")
	}
}

// wrapFromWire handles a required wire value flowing into a nullable
// domain field.
func (s *synthesizer) wrapFromWire(fp *plan.FieldPlan, dst, wire string) []string {
	elem := fp.Shape.Elem()
	c := s.scalarFromWire(elem, wire)
	elemText := strings.TrimPrefix(fp.TypeText, "*")

	if !c.fallible {
		return []string{dst + " = func() *" + elemText + " { v := " + c.expr + "; return &v }()"}
	}

	v := varName(fp.Name)

	return []string{
		v + ", err := " + c.expr,
		"if err != nil {",
		"\treturn " + s.zeroValue() + ", err",
		"}",
		dst + " = &" + v,
	}
}

// mapFromWire handles nullable-to-nullable: convert only when present.
func (s *synthesizer) mapFromWire(fp *plan.FieldPlan, dst, wire string) []string {
	elem := fp.Shape.Elem()

	val := "*" + wire
	if elem.Kind == shape.KindStruct {
		val = wire
	}

	c := s.scalarFromWire(elem, val)

	var body []string
	if c.fallible {
		body = []string{
			"v, err := " + c.expr,
			"if err != nil {",
			"\treturn " + s.zeroValue() + ", err",
			"}",
			dst + " = &v",
		}
	} else {
		body = []string{
			"v := " + c.expr,
			dst + " = &v",
		}
	}

	lines := []string{"if " + wire + " != nil {"}
	lines = append(lines, indent(body)...)

	return append(lines, "}")
}

func (s *synthesizer) collectFromWire(fp *plan.FieldPlan, dst, wire string) []string {
	loop := []string{dst + " = make(" + fp.TypeText + ", 0, len(" + wire + "))"}
	loop = append(loop, s.fromWireAppendLoop(dst, wire, fp.Shape.Elem())...)

	switch fp.ErrorMode {
	case plan.ErrorModePanic:
		lines := []string{
			"if len(" + wire + ") == 0 {",
			"\tpanic(\"" + s.sp.Name + "." + fp.Name + " is required but the wire sequence is empty\")",
			"}",
		}

		return append(lines, loop...)

	case plan.ErrorModeError:
		lines := []string{
			"if len(" + wire + ") == 0 {",
			"\treturn " + s.zeroValue() + ", " + s.errorExpr(fp),
			"}",
		}

		return append(lines, loop...)

	case plan.ErrorModeDefault:
		if fp.DefaultFn != "" {
			lines := []string{
				"if len(" + wire + ") == 0 {",
				"\t" + dst + " = " + fp.DefaultFn + "()",
				"} else {",
			}
			lines = append(lines, indent(loop)...)

			return append(lines, "}")
		}

		lines := []string{"if len(" + wire + ") > 0 {"}
		lines = append(lines, indent(loop)...)

		return append(lines, "}")

	default:
		// An empty wire sequence simply leaves the field nil.
		lines := []string{"if len(" + wire + ") > 0 {"}
		lines = append(lines, indent(loop)...)

		return append(lines, "}")
	}
}

func (s *synthesizer) collectMapOptionFromWire(fp *plan.FieldPlan, dst, wire string) []string {
	sliceText := strings.TrimPrefix(fp.TypeText, "*")
	elem := fp.Shape.Elem().Elem()

	body := []string{"vs := make(" + sliceText + ", 0, len(" + wire + "))"}
	body = append(body, s.fromWireAppendLoop("vs", wire, elem)...)
	body = append(body, dst+" = &vs")

	lines := []string{"if len(" + wire + ") > 0 {"}
	lines = append(lines, indent(body)...)

	return append(lines, "}")
}

// fromWireAppendLoop renders the element-wise conversion loop of a
// sequence, appending converted elements onto dst.
func (s *synthesizer) fromWireAppendLoop(dst, src string, elem shape.Shape) []string {
	lines := []string{"for _, e := range " + src + " {"}

	if elem.Kind == shape.KindPointer && elem.Elem().Kind == shape.KindStruct {
		c := s.scalarFromWire(elem.Elem(), "e")
		if c.fallible {
			lines = append(lines,
				"\tv, err := "+c.expr,
				"\tif err != nil {",
				"\t\treturn "+s.zeroValue()+", err",
				"\t}",
				"\t"+dst+" = append("+dst+", &v)")
		} else {
			lines = append(lines,
				"\tv := "+c.expr,
				"\t"+dst+" = append("+dst+", &v)")
		}

		return append(lines, "}")
	}

	c := s.scalarFromWire(elem, "e")
	if c.fallible {
		lines = append(lines,
			"\tv, err := "+c.expr,
			"\tif err != nil {",
			"\t\treturn "+s.zeroValue()+", err",
			"\t}",
			"\t"+dst+" = append("+dst+", v)")
	} else {
		lines = append(lines, "\t"+dst+" = append("+dst+", "+c.expr+")")
	}

	return append(lines, "}")
}

func (s *synthesizer) toWireField(fp *plan.FieldPlan) []string {
	src := "in." + fp.Name
	dst := "out." + goName(fp.WireName)

	switch fp.Strategy {
	case plan.StrategyIgnore:
		return nil

	case plan.StrategyCustom:
		if fp.ToWireFn != "" {
			return []string{dst + " = " + fp.ToWireFn + "(" + src + ")"}
		}
		// Missing direction falls back to a plain conversion.
		return []string{dst + " = " + s.scalarToWire(fp.Shape, src)}

	case plan.StrategyDirectAssign:
		return []string{dst + " = " + src}

	case plan.StrategyDirectConvert:
		return []string{dst + " = " + s.scalarToWire(fp.Shape, src)}

	case plan.StrategyTransparent:
		inner := wrapperInnerText(fp.Shape)
		if !fp.Wire.IsOptional() {
			return []string{dst + " = " + inner + "(" + src + ")"}
		}

		return []string{dst + " = func() *" + inner + " { v := " + inner + "(" + src + "); return &v }()"}

	case plan.StrategyOptionUnwrap:
		// Required domain value wrapped onto an optional wire field.
		// Struct accessors are pointers already, and a required wire
		// field takes the value directly.
		if fp.Shape.Kind == shape.KindStruct || !fp.Wire.IsOptional() {
			return []string{dst + " = " + s.scalarToWire(fp.Shape, src)}
		}

		wt := s.wireScalarText(fp.Shape)

		return []string{dst + " = func() *" + wt + " { v := " + s.scalarToWire(fp.Shape, src) + "; return &v }()"}

	case plan.StrategyOptionWrap:
		elem := fp.Shape.Elem()

		return []string{
			"if " + src + " != nil {",
			"\t" + dst + " = " + s.scalarToWire(elem, "*"+src),
			"}",
		}

	case plan.StrategyOptionMap:
		elem := fp.Shape.Elem()
		if elem.Kind == shape.KindStruct {
			return []string{
				"if " + src + " != nil {",
				"\t" + dst + " = " + baseName(elem.Name) + "ToWire(*" + src + ")",
				"}",
			}
		}

		return []string{
			"if " + src + " != nil {",
			"\tv := " + s.scalarToWire(elem, "*"+src),
			"\t" + dst + " = &v",
			"}",
		}

	case plan.StrategyCollect:
		loop := []string{dst + " = make([]" + s.wireElemText(fp.Shape.Elem()) + ", 0, len(" + src + "))"}
		loop = append(loop, s.toWireAppendLoop(dst, src, fp.Shape.Elem())...)

		lines := []string{"if len(" + src + ") > 0 {"}
		lines = append(lines, indent(loop)...)

		return append(lines, "}")

	case plan.StrategyCollectMapOption:
		elem := fp.Shape.Elem().Elem()

		loop := []string{dst + " = make([]" + s.wireElemText(elem) + ", 0, len(*" + src + "))"}
		loop = append(loop, s.toWireAppendLoop(dst, "*"+src, elem)...)

		lines := []string{"if " + src + " != nil && len(*" + src + ") > 0 {"}
		lines = append(lines, indent(loop)...)

		return append(lines, "}")

	case plan.StrategyCollectDirect:
		return []string{dst + " = append(" + fp.TypeText + "(nil), " + src + "...)"}
	}

	return nil
}

// scalarToWire builds the domain-to-wire conversion expression for a
// single non-sequence value. Always infallible.
func (s *synthesizer) scalarToWire(sh shape.Shape, expr string) string {
	switch sh.Kind {
	case shape.KindStruct, shape.KindEnum:
		return baseName(sh.Name) + "ToWire(" + expr + ")"

	case shape.KindWrapper:
		return wrapperInnerText(sh) + "(" + expr + ")"

	default:
		return expr
	}
}

// wireScalarText is the wire-side type text of a scalar value, used to
// spell the pointer type when wrapping onto an optional wire field.
func (s *synthesizer) wireScalarText(sh shape.Shape) string {
	switch sh.Kind {
	case shape.KindEnum:
		return s.sp.Namespace + "." + baseName(sh.Name)

	case shape.KindWrapper:
		return wrapperInnerText(sh)

	default:
		return sh.Name
	}
}

// wireElemText is the wire-side element type text of a sequence.
func (s *synthesizer) wireElemText(elem shape.Shape) string {
	if elem.Kind == shape.KindPointer {
		elem = elem.Elem()
	}

	switch elem.Kind {
	case shape.KindStruct:
		return "*" + s.sp.Namespace + "." + baseName(elem.Name)

	case shape.KindEnum:
		return s.sp.Namespace + "." + baseName(elem.Name)

	case shape.KindWrapper:
		return wrapperInnerText(elem)

	default:
		return elem.Name
	}
}

func (s *synthesizer) toWireAppendLoop(dst, src string, elem shape.Shape) []string {
	lines := []string{"for _, e := range " + src + " {"}

	if elem.Kind == shape.KindPointer && elem.Elem().Kind == shape.KindStruct {
		lines = append(lines,
			"\tif e == nil {",
			"\t\tcontinue",
			"\t}",
			"\t"+dst+" = append("+dst+", "+s.scalarToWire(elem.Elem(), "*e")+")")

		return append(lines, "}")
	}

	lines = append(lines, "\t"+dst+" = append("+dst+", "+s.scalarToWire(elem, "e")+")")

	return append(lines, "}")
}

// errorExpr builds the error value reported for an absent required
// value: field-level constructor, override type, or the generated type.
func (s *synthesizer) errorExpr(fp *plan.FieldPlan) string {
	switch {
	case fp.ErrorFn != "":
		return fp.ErrorFn + `("` + fp.Name + `")`

	case fp.ErrorType != "":
		return "&" + fp.ErrorType + `{Field: "` + fp.Name + `"}`

	default:
		return "&" + s.sp.GeneratedErrorTypeName + `{Field: "` + fp.Name + `"}`
	}
}

func (s *synthesizer) zeroValue() string {
	return s.sp.Name + "{}"
}

// Helpers shared by the synthesizer and generator.

// goName maps a snake_case wire field name to its generated Go
// accessor name.
func goName(name string) string {
	var b strings.Builder

	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}

		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}

	return b.String()
}

// baseName strips the package qualifier of a type name.
func baseName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}

	return name
}

func wrapperInnerText(sh shape.Shape) string {
	if sh.Inner != nil {
		return sh.Inner.Name
	}

	return sh.Name
}

// castExpr renders a conversion to typeText; pointer types need the
// extra parentheses to parse as a conversion.
func castExpr(typeText, expr string) string {
	if strings.HasPrefix(typeText, "*") {
		return "(" + typeText + ")(" + expr + ")"
	}

	return typeText + "(" + expr + ")"
}

func varName(field string) string {
	return strings.ToLower(field[:1]) + field[1:] + "Val"
}

func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "\t" + l
	}

	return out
}
