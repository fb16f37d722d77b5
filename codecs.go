package imagemeta

// Format codecs register themselves with the registry.
import (
	_ "github.com/simonhull/imagemeta/internal/jpeg"
	_ "github.com/simonhull/imagemeta/internal/raster"
)
