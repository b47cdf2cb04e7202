package script

type expr interface{ exprLine() int }

type (
	litExpr struct {
		val  any
		line int
	}
	identExpr struct {
		name string
		line int
	}
	arrayExpr struct {
		items []expr
		line  int
	}
	mapExpr struct {
		keys []string
		vals []expr
		line int
	}
	callExpr struct {
		name string
		args []expr
		line int
	}
	// methodExpr is `recv.name(args)`, dispatched as name(recv, args...).
	methodExpr struct {
		recv expr
		name string
		args []expr
		line int
	}
	propExpr struct {
		obj  expr
		name string
		line int
	}
	indexExpr struct {
		obj, idx expr
		line     int
	}
	unaryExpr struct {
		op   string
		x    expr
		line int
	}
	binaryExpr struct {
		op   string
		l, r expr
		line int
	}
)

func (e *litExpr) exprLine() int    { return e.line }
func (e *identExpr) exprLine() int  { return e.line }
func (e *arrayExpr) exprLine() int  { return e.line }
func (e *mapExpr) exprLine() int    { return e.line }
func (e *callExpr) exprLine() int   { return e.line }
func (e *methodExpr) exprLine() int { return e.line }
func (e *propExpr) exprLine() int   { return e.line }
func (e *indexExpr) exprLine() int  { return e.line }
func (e *unaryExpr) exprLine() int  { return e.line }
func (e *binaryExpr) exprLine() int { return e.line }

type stmt interface{ stmtLine() int }

type (
	letStmt struct {
		name string
		val  expr
		line int
	}
	assignStmt struct {
		target expr
		op     string
		val    expr
		line   int
	}
	ifStmt struct {
		cond expr
		then []stmt
		els  []stmt
		line int
	}
	forStmt struct {
		name string
		iter expr
		body []stmt
		line int
	}
	returnStmt struct {
		val  expr
		line int
	}
	throwStmt struct {
		val  expr
		line int
	}
	exprStmt struct {
		x    expr
		line int
		// tail marks a final expression without ';', the implicit result of a function.
		tail bool
	}
	blockStmt struct {
		body []stmt
		line int
	}
)

func (s *letStmt) stmtLine() int    { return s.line }
func (s *assignStmt) stmtLine() int { return s.line }
func (s *ifStmt) stmtLine() int     { return s.line }
func (s *forStmt) stmtLine() int    { return s.line }
func (s *returnStmt) stmtLine() int { return s.line }
func (s *throwStmt) stmtLine() int  { return s.line }
func (s *exprStmt) stmtLine() int   { return s.line }
func (s *blockStmt) stmtLine() int  { return s.line }

type funcDecl struct {
	name   string
	params []string
	body   []stmt
	line   int
}

// program is a parsed recipe.
type program struct {
	globals []*letStmt
	funcs   map[funcKey]*funcDecl
}

type funcKey struct {
	name  string
	arity int
}
