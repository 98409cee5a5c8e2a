package replica

import (
	"reflect"
	"testing"
	"time"
	"unsafe"
)

type level int

type money struct {
	units int64
	nanos int32
}

type linked struct {
	GraphNode
	Next *linked
}

type loopPtr *loopPtr

type (
	ping *pong
	pong *ping
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want Shape
	}{
		{"bool", reflect.TypeFor[bool](), ShapeScalar},
		{"int", reflect.TypeFor[int](), ShapeScalar},
		{"float64", reflect.TypeFor[float64](), ShapeScalar},
		{"complex128", reflect.TypeFor[complex128](), ShapeScalar},
		{"string", reflect.TypeFor[string](), ShapeScalar},
		{"named int", reflect.TypeFor[level](), ShapeScalar},
		{"time", reflect.TypeFor[time.Time](), ShapeScalar},
		{"pointer to int", reflect.TypeFor[*int](), ShapeScalar},
		{"pointer to time", reflect.TypeFor[*time.Time](), ShapeScalar},
		{"slice", reflect.TypeFor[[]int](), ShapeArray},
		{"array", reflect.TypeFor[[4]string](), ShapeArray},
		{"map", reflect.TypeFor[map[string]int](), ShapeContainer},
		{"struct", reflect.TypeFor[money](), ShapeRecord},
		{"pointer to struct", reflect.TypeFor[*money](), ShapeRecord},
		{"pointer to pointer", reflect.TypeFor[**money](), ShapeRecord},
		{"self pointer", reflect.TypeFor[loopPtr](), ShapeUnknown},
		{"mutual pointers", reflect.TypeFor[ping](), ShapeUnknown},
		{"interface", reflect.TypeFor[any](), ShapeUnknown},
		{"func", reflect.TypeFor[func()](), ShapeUnknown},
		{"chan", reflect.TypeFor[chan int](), ShapeUnknown},
		{"unsafe pointer", reflect.TypeFor[unsafe.Pointer](), ShapeUnknown},
		{"nil", nil, ShapeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.typ); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestClassifyValue(t *testing.T) {
	var v any = []int{1}
	if got := ClassifyValue(v); got != ShapeArray {
		t.Errorf("ClassifyValue([]int) = %v, want %v", got, ShapeArray)
	}
	if got := ClassifyValue(nil); got != ShapeUnknown {
		t.Errorf("ClassifyValue(nil) = %v, want %v", got, ShapeUnknown)
	}
}

func TestShape_String(t *testing.T) {
	tests := []struct {
		shape Shape
		want  string
	}{
		{ShapeUnknown, "unknown"},
		{ShapeScalar, "scalar"},
		{ShapeArray, "array"},
		{ShapeContainer, "container"},
		{ShapeRecord, "record"},
		{Shape(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.shape.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestRegisterScalar(t *testing.T) {
	Reset()
	defer Reset()

	rt := reflect.TypeFor[money]()
	if got := Classify(rt); got != ShapeRecord {
		t.Fatalf("Classify(money) = %v before registration, want record", got)
	}

	RegisterScalar(rt)

	if got := Classify(rt); got != ShapeScalar {
		t.Errorf("Classify(money) = %v, want scalar", got)
	}
	if got := Classify(reflect.PointerTo(rt)); got != ShapeScalar {
		t.Errorf("Classify(*money) = %v, want scalar", got)
	}
	if !isValueScalar(rt) {
		t.Error("registered struct should be copied by value")
	}
}

func TestIsValueScalar(t *testing.T) {
	if !isValueScalar(reflect.TypeFor[string]()) {
		t.Error("string should be a value scalar")
	}
	if isValueScalar(reflect.TypeFor[*string]()) {
		t.Error("pointers carry identity and are not value scalars")
	}
	if isValueScalar(reflect.TypeFor[money]()) {
		t.Error("unregistered struct is not a value scalar")
	}
}

func TestIsGraph(t *testing.T) {
	if !isGraph(reflect.TypeFor[linked]()) {
		t.Error("linked embeds GraphNode")
	}
	if !isGraph(reflect.TypeFor[*linked]()) {
		t.Error("*linked embeds GraphNode")
	}
	if isGraph(reflect.TypeFor[money]()) {
		t.Error("money carries no marker")
	}
}

func TestRecordType(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want reflect.Type
	}{
		{reflect.TypeFor[money](), reflect.TypeFor[money]()},
		{reflect.TypeFor[*money](), reflect.TypeFor[money]()},
		{reflect.TypeFor[**money](), reflect.TypeFor[money]()},
		{reflect.TypeFor[[]money](), nil},
		{reflect.TypeFor[int](), nil},
		{reflect.TypeFor[loopPtr](), nil},
		{reflect.TypeFor[*pong](), nil},
	}

	for _, tt := range tests {
		if got := recordType(tt.typ); got != tt.want {
			t.Errorf("recordType(%v) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
