package display

// Multi fans every call out to each presenter in order.
type Multi []Presenter

func (m Multi) ShowPressed() {
	for _, p := range m {
		p.ShowPressed()
	}
}

func (m Multi) ShowReleased() {
	for _, p := range m {
		p.ShowReleased()
	}
}

func (m Multi) ShowBoard(image string) {
	for _, p := range m {
		p.ShowBoard(image)
	}
}
