package interpreter

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	selectVerbs    = []string{"selecciona", "seleccionar", "muestra", "mostrar", "enséñame", "ensename", "encuentra", "encontrar", "busca", "buscar", "lista", "listar", "select", "show", "find", "list"}
	highlightVerbs = []string{"resalta", "resaltar", "ilumina", "destaca", "marca", "colorea", "highlight", "mark"}
	zoomVerbs      = []string{"zoom", "acerca", "acércate", "acercate", "enfoca", "céntrate", "centrate", "centra", "ve a ", "focus", "go to"}
	analyzeVerbs   = []string{"analiza", "analizar", "análisis", "analisis", "detalle", "inspecciona", "analyze", "analyse", "inspect"}
	isolateVerbs   = []string{"aísla", "aisla", "aislar", "isola", "isolate"}
	resetPhrases   = []string{"restablece", "restablecer", "resetea", "resetear", "reinicia la vista", "vista inicial", "vista por defecto", "restaura la vista", "reset"}

	diagramNouns  = []string{"diagrama", "gráfico", "grafico", "gráfica", "grafica", "chart", "diagram"}
	pieWords      = []string{"pastel", "circular", "tarta", "quesito", "pie"}
	barWords      = []string{"barras", "barra", "bar "}
	reportNouns   = []string{"informe", "reporte", "report"}
	maintenance   = []string{"mantenimiento", "maintenance"}
	energy        = []string{"energ"}
	compliance    = []string{"normativ", "cumplimiento", "compliance", "regulaci", "accesibilidad"}
	elementNouns  = []string{"elemento", "element", "objeto", "object"}
	propertyWords = []string{"propiedad", "property"}
)

var countingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`cu[aá]nt[oa]s?`),
	regexp.MustCompile(`\bcuent[ao]\b`),
	regexp.MustCompile(`\bcontar\b`),
	regexp.MustCompile(`\bconteo\b`),
	regexp.MustCompile(`n[uú]mero de`),
	regexp.MustCompile(`total de`),
	regexp.MustCompile(`how many`),
	regexp.MustCompile(`\bcount\b`),
}

var (
	elementIDPattern = regexp.MustCompile(`\b(?:elementos?|elements?|objetos?|objects?|id)\s*(?:#|n[º°o]\.?)?\s*(\d+)`)
	propertyPattern  = regexp.MustCompile(`(?:propiedad|property)\s+["']?([\p{L}\p{N}_.]+)["']?\s+(?:=|:|es|igual a|con valor|equals|is)\s+["']?(.+?)["']?\s*$`)
	spaceNamePattern = regexp.MustCompile(`(?:llamad[oa]s?|nombrad[oa]s?|con nombre|named|called)\s+["']?(.+?)["']?\s*$`)
	spaceFuncPattern = regexp.MustCompile(`(?:de uso|con uso|con función|con funcion|función|funcion|function|used for)\s+["']?(.+?)["']?\s*$`)
)

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func containsAll(text string, needles ...string) bool {
	for _, n := range needles {
		if !strings.Contains(text, n) {
			return false
		}
	}
	return true
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func elementID(text string) (int, bool) {
	m := elementIDPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	return id, err == nil
}

func submatch(p *regexp.Regexp, text string) string {
	if m := p.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
