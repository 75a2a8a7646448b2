package domain

type Page struct {
	Number int
	Size   int
}

func NewPage(pageNumber, pageSize int) Page {
	pNumber := 1
	if pageNumber > 0 {
		pNumber = pageNumber
	}

	pSize := 10
	if pageSize > 0 {
		pSize = pageSize
	}

	return Page{
		Number: pNumber,
		Size:   pSize,
	}
}

// Bounds returns the [from, to) window of the page over a list of n items.
func (p Page) Bounds(n int) (int, int) {
	from := p.Number*p.Size - p.Size
	if from > n {
		from = n
	}
	to := from + p.Size
	if to > n {
		to = n
	}
	return from, to
}
