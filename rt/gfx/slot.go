package gfx

// TextureSlot holds a texture together with whether the holder owns it.
// Only owned textures are released.
type TextureSlot struct {
	tex   Texture
	owned bool
}

func Owned(t Texture) TextureSlot { return TextureSlot{tex: t, owned: t != nil} }

// BorrowedDefault refers to a shared texture such as the default white.
func BorrowedDefault(t Texture) TextureSlot { return TextureSlot{tex: t} }

func (s TextureSlot) Texture() Texture { return s.tex }

func (s TextureSlot) IsOwned() bool { return s.owned }

func (s TextureSlot) Empty() bool { return s.tex == nil }

func (s *TextureSlot) Release() {
	if s.owned && s.tex != nil {
		s.tex.Release()
	}
	*s = TextureSlot{}
}
