package config

// Import scale applied to every decoded translation. The consuming
// skeleton decides the unit; scale values are never multiplied by it.
var importScale float32 = 1.0

func SetImportScale(scale float32) {
	if scale != 0 {
		importScale = scale
	}
}

func GetImportScale() float32 {
	return importScale
}
