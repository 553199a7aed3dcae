package buffer

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestStreamBufferWrite(t *testing.T) {
	b := NewStreamBuffer(0)
	if b.Capacity() != 0 {
		t.Fatalf("Capacity() = %d, want 0", b.Capacity())
	}

	b.WriteByte(0xF3)
	if b.Capacity() != 1 {
		t.Errorf("Capacity() after one byte = %d, want 1", b.Capacity())
	}

	b.WriteBytes(1, 2, 3)
	if b.Capacity() != 4 {
		t.Errorf("Capacity() after four bytes = %d, want 4", b.Capacity())
	}

	b.Write([]byte{4})
	if b.Capacity() != 8 {
		t.Errorf("Capacity() after five bytes = %d, want 8", b.Capacity())
	}

	if b.Len() != 5 || b.Position() != 5 {
		t.Errorf("Len/Position = %d/%d, want 5/5", b.Len(), b.Position())
	}
	if !bytes.Equal(b.Bytes(), []byte{0xF3, 1, 2, 3, 4}) {
		t.Errorf("Bytes() = %x", b.Bytes())
	}
}

func TestStreamBufferGrowthJumps(t *testing.T) {
	b := NewStreamBuffer(3)
	b.Write(make([]byte, 13))
	if b.Capacity() != 24 {
		t.Errorf("Capacity() = %d, want 24", b.Capacity())
	}
}

func TestStreamBufferInvariant(t *testing.T) {
	b := NewStreamBuffer(2)
	check := func(step string) {
		t.Helper()
		if !(b.Position() <= b.Len() && b.Len() <= b.Capacity()) {
			t.Fatalf("%s: position=%d length=%d capacity=%d", step, b.Position(), b.Len(), b.Capacity())
		}
	}

	b.WriteBytes(1, 2, 3, 4, 5)
	check("write")
	b.SetPosition(2)
	check("seek back")
	b.WriteByte(9)
	check("overwrite")
	if b.Len() != 5 {
		t.Errorf("overwrite changed length to %d", b.Len())
	}
	b.SetPosition(10)
	check("seek past end")
	if b.Len() != 10 {
		t.Errorf("seek past end: Len() = %d, want 10", b.Len())
	}
	b.SetLength(3)
	check("truncate")
	if b.Position() != 3 {
		t.Errorf("truncate: Position() = %d, want 3", b.Position())
	}
	b.SetPosition(-1)
	check("negative seek")
	if b.Position() != 0 {
		t.Errorf("negative seek: Position() = %d, want 0", b.Position())
	}
}

func TestStreamBufferRead(t *testing.T) {
	b := NewStreamBufferFrom([]byte{1, 2, 3, 4, 5})

	c, err := b.ReadByte()
	if err != nil || c != 1 {
		t.Fatalf("ReadByte() = %d, %v", c, err)
	}

	p, err := b.ReadN(2)
	if err != nil || !bytes.Equal(p, []byte{2, 3}) {
		t.Fatalf("ReadN(2) = %x, %v", p, err)
	}

	if b.Available() != 2 {
		t.Errorf("Available() = %d, want 2", b.Available())
	}

	if _, err := b.ReadN(3); !errors.Is(err, ErrTruncated) {
		t.Errorf("ReadN past end: err = %v, want ErrTruncated", err)
	}

	rest, err := io.ReadAll(b)
	if err != nil || !bytes.Equal(rest, []byte{4, 5}) {
		t.Errorf("ReadAll = %x, %v", rest, err)
	}

	if _, err := b.ReadByte(); !errors.Is(err, ErrTruncated) {
		t.Errorf("ReadByte at end: err = %v, want ErrTruncated", err)
	}
}

func TestStreamBufferWriteAt(t *testing.T) {
	b := NewStreamBuffer(8)
	b.WriteBytes(0xFB, 0, 0, 0, 0, 0xF3)
	b.WriteAt([]byte{0, 0, 0, 6}, 1)

	if b.Position() != 6 {
		t.Errorf("WriteAt moved cursor to %d", b.Position())
	}
	if !bytes.Equal(b.Bytes(), []byte{0xFB, 0, 0, 0, 6, 0xF3}) {
		t.Errorf("Bytes() = %x", b.Bytes())
	}

	b.WriteAt([]byte{7}, 8)
	if b.Len() != 9 || b.Bytes()[6] != 0 || b.Bytes()[8] != 7 {
		t.Errorf("WriteAt past end: %x", b.Bytes())
	}

	if _, err := b.WriteAt([]byte{1}, -1); !errors.Is(err, ErrNegativeSize) {
		t.Errorf("WriteAt(-1) err = %v, want ErrNegativeSize", err)
	}
}

func TestStreamBufferAsWriterAt(t *testing.T) {
	var w io.WriterAt = NewStreamBuffer(4)
	if n, err := w.WriteAt([]byte{9, 9}, 2); n != 2 || err != nil {
		t.Fatalf("WriteAt = %d, %v", n, err)
	}
	if got := w.(*StreamBuffer).Bytes(); !bytes.Equal(got, []byte{0, 0, 9, 9}) {
		t.Errorf("Bytes() = %x", got)
	}
}

func TestStreamBufferCompactAndReserve(t *testing.T) {
	b := NewStreamBuffer(4)
	b.WriteBytes(1, 2, 3, 4)
	b.SetPosition(2)
	b.Compact()

	if b.Position() != 0 || b.Len() != 2 || !bytes.Equal(b.Bytes(), []byte{3, 4}) {
		t.Fatalf("Compact: pos=%d len=%d bytes=%x", b.Position(), b.Len(), b.Bytes())
	}

	b.SetPosition(b.Len())
	w := b.ReserveBytes(3)
	copy(w, []byte{5, 6, 7})
	if !bytes.Equal(b.Bytes(), []byte{3, 4, 5, 6, 7}) {
		t.Errorf("ReserveBytes: %x", b.Bytes())
	}

	cp := b.Copy()
	b.Reset()
	if b.Len() != 0 || len(cp) != 5 {
		t.Errorf("Reset/Copy: len=%d copy=%x", b.Len(), cp)
	}
}
