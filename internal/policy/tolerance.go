package policy

import (
	"fmt"
	"math"
)

// EvaluateTolerance 计算一条测量记录的判定结果
// 实测值落在 [toleranceMin, toleranceMax] 闭区间内判定为 ok,否则为 ng
// 纯函数,幂等,每次写入或修改 actual/toleranceMin/toleranceMax 时都会重新计算
func EvaluateTolerance(actual, toleranceMin, toleranceMax float64) (Verdict, error) {
	for _, v := range []float64{actual, toleranceMin, toleranceMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("%w: tolerance evaluation requires finite values", ErrInvalidInput)
		}
	}
	if toleranceMin > toleranceMax {
		return "", fmt.Errorf("%w: tolerance min %v is greater than max %v", ErrInvalidInput, toleranceMin, toleranceMax)
	}

	if actual >= toleranceMin && actual <= toleranceMax {
		return VerdictOK, nil
	}
	return VerdictNG, nil
}
