// Package png implements the structural core of a PNG image codec: pixel
// format geometry, Adam7 interlacing layout and deinterlacing, the chunk
// ordering grammar, and the suggested-palette (sPLT) chunk codec.
//
// DEFLATE decompression, scanline filter reversal, and color management
// are not part of this package; Decode hands back the still-DEFLATEd
// IDAT stream for a collaborator to inflate and defilter before
// Deinterlace is used to assemble the final raster.
package png
