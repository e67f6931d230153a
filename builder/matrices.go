package builder

import (
	"fmt"
	"strings"

	"github.com/mengjing120/kernelgen/types"
	"gonum.org/v1/gonum/mat"
)

type staticMatrix struct {
	name string
	m    mat.Matrix
}

// AddStaticMatrix embeds a constant matrix into the compilation unit
// preamble. Matrices are emitted in column-major order, declared
// [cols][rows], so generated kernels index them the way numerical
// libraries expect.
func (tp *Transpiler) AddStaticMatrix(name string, m mat.Matrix) {
	for i := range tp.matrices {
		if tp.matrices[i].name == name {
			tp.matrices[i].m = m
			return
		}
	}
	tp.matrices = append(tp.matrices, staticMatrix{name: name, m: m})
}

func (tp *Transpiler) formatStaticMatrices() string {
	if len(tp.matrices) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("// Static matrices\n")
	for _, sm := range tp.matrices {
		sb.WriteString(tp.formatStaticMatrix(sm.name, sm.m))
	}
	return sb.String()
}

func (tp *Transpiler) formatStaticMatrix(name string, m mat.Matrix) string {
	rows, cols := m.Dims()
	single := tp.prec == types.Single

	typeStr := "double"
	if single {
		typeStr = "float"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("// Matrix %s stored in column-major format\n", name))
	sb.WriteString(fmt.Sprintf("const %s %s[%d][%d] = {\n", typeStr, name, cols, rows))

	for j := 0; j < cols; j++ {
		sb.WriteString("    {")
		for i := 0; i < rows; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			val := m.At(i, j)
			if single {
				sb.WriteString(fmt.Sprintf("%.7ef", val))
			} else {
				sb.WriteString(fmt.Sprintf("%.15e", val))
			}
		}
		sb.WriteString("}")
		if j < cols-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("};\n\n")
	return sb.String()
}
