package prettyprinter

import (
	"testing"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/lexer"
	"github.com/funvibe/traitmap/internal/parser"
	"github.com/funvibe/traitmap/internal/source"
)

func parse(t *testing.T, input string) *ast.Module {
	t.Helper()
	f := source.NewFile("test.tm", input)
	h := diagnostics.NewHandler()
	m := parser.New(f, lexer.New(f).Tokenize(), h).ParseModule("test")
	for _, err := range h.Errors() {
		t.Fatalf("parse error: %s\n%s", err, input)
	}
	return m
}

func TestPrintNormalizesLayout(t *testing.T) {
	got := Print(parse(t, `use ops::Add; use shapes::*;
pub trait Dbl<T>: Add<T>{fn dbl(self,v:T)->T;const TWO:u64=2;type Out;}
struct P<T:Eq+Ord>{x:T,y:(T,)}
enum E{A,B:&mut [u8;4]}
impl<T> Dbl<T> for P<T> where T: Add<T>{ fn dbl(&self, v: T) -> T { v } type Out = str[3]; }
`))
	want := `use ops::Add;
use shapes::*;

pub trait Dbl<T>: Add<T> {
    const TWO: u64 = 2;
    type Out;
    fn dbl(self, v: T) -> T;
}

struct P<T: Eq + Ord> {
    x: T,
    y: (T,),
}

enum E {
    A,
    B: &mut [u8; 4],
}

impl<T> Dbl<T> for P<T> where T: Add<T> {
    type Out = str[3];
    fn dbl(&self, v: T) -> T { v }
}
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintIsStable(t *testing.T) {
	inputs := []string{
		"impl S { }",
		"pub type W = m::S<(u8, bool), [u64; 2]>;",
		"pub fn free<T>(x: T) -> T where T: Ord { x }",
		"trait Ord: Eq + PartialOrd { fn max(mut self) -> Self { self } }",
		"impl<T: Eq, U> Conv<U> for Wrapper<T, U> where U: Into<T>, T: Ord { const Z: u64 = (1 + 2) * 3; }",
	}
	for _, in := range inputs {
		once := Print(parse(t, in))
		twice := Print(parse(t, once))
		if once != twice {
			t.Errorf("printing is not stable:\n%s\n---\n%s", once, twice)
		}
	}
}
