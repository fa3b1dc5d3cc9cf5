package chroma

import (
	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/fwojciec/quickdiff"
)

// StyleFromPalette returns a StyleFunc that colors chroma tokens from p.
// Besides ordinary language lexers it also covers chroma's "diff" lexer:
// GenericInserted/GenericDeleted reuse the palette's Added/Deleted colors,
// so a changed file that is itself a .diff/.patch file gets +/- coloring
// in its syntax layer.
func StyleFromPalette(p quickdiff.Palette) StyleFunc {
	return func(tt chromalib.TokenType) quickdiff.Style {
		switch tt {
		// chroma's "diff" lexer token types.
		case chromalib.GenericInserted:
			return quickdiff.Style{Foreground: string(p.Added)}
		case chromalib.GenericDeleted:
			return quickdiff.Style{Foreground: string(p.Deleted)}
		case chromalib.GenericHeading, chromalib.GenericSubheading:
			return quickdiff.Style{Foreground: string(p.Modified), Bold: true}

		// Type keywords (handled separately from other keywords)
		case chromalib.KeywordType:
			return quickdiff.Style{Foreground: string(p.Type), Bold: true}

		// Keywords
		case chromalib.Keyword, chromalib.KeywordConstant, chromalib.KeywordDeclaration,
			chromalib.KeywordNamespace, chromalib.KeywordPseudo, chromalib.KeywordReserved:
			return quickdiff.Style{Foreground: string(p.Keyword), Bold: true}

		// Comments
		case chromalib.Comment, chromalib.CommentHashbang, chromalib.CommentMultiline,
			chromalib.CommentPreproc, chromalib.CommentPreprocFile, chromalib.CommentSingle,
			chromalib.CommentSpecial:
			return quickdiff.Style{Foreground: string(p.Comment)}

		// Strings
		case chromalib.String, chromalib.StringAffix, chromalib.StringBacktick, chromalib.StringChar,
			chromalib.StringDelimiter, chromalib.StringDoc, chromalib.StringDouble,
			chromalib.StringEscape, chromalib.StringHeredoc, chromalib.StringInterpol,
			chromalib.StringOther, chromalib.StringRegex, chromalib.StringSingle,
			chromalib.StringSymbol:
			return quickdiff.Style{Foreground: string(p.String)}

		// Numbers
		case chromalib.Number, chromalib.NumberBin, chromalib.NumberFloat, chromalib.NumberHex,
			chromalib.NumberInteger, chromalib.NumberIntegerLong, chromalib.NumberOct:
			return quickdiff.Style{Foreground: string(p.Number)}

		// Operators
		case chromalib.Operator, chromalib.OperatorWord:
			return quickdiff.Style{Foreground: string(p.Operator)}

		// Function names
		case chromalib.NameFunction, chromalib.NameFunctionMagic:
			return quickdiff.Style{Foreground: string(p.Function)}

		// Constants
		case chromalib.NameConstant:
			return quickdiff.Style{Foreground: string(p.Constant)}

		// Punctuation
		case chromalib.Punctuation:
			return quickdiff.Style{Foreground: string(p.Punctuation)}

		default:
			return quickdiff.Style{}
		}
	}
}
