package model

import (
	"bufio"
	"io"
	"os"

	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// SaveWeights は重みをJSONファイルに保存する
//
// パラメータ:
//   - path: 保存先のファイルパス
//   - w: 保存する重み（WeightExporter.ExportWeights の戻り値）
//
// 戻り値:
//   - error: 検証または書き込みに失敗した場合のエラー
//
// 使用例:
//
//	w, err := reg.ExportWeights()
//	// ...
//	err = model.SaveWeights("linreg.json", w)
func SaveWeights(path string, w *ModelWeights) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	if err := WriteWeights(file, w); err != nil {
		_ = file.Close()
		return err
	}
	return errors.Wrap(file.Close(), "failed to close file")
}

// LoadWeights はJSONファイルから重みを読み込む
//
// 使用例:
//
//	w, err := model.LoadWeights("linreg.json")
//	// ...
//	reg := linear.NewLinReg()
//	err = reg.ImportWeights(w)
func LoadWeights(path string) (*ModelWeights, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()
	return ReadWeights(bufio.NewReader(file))
}

// WriteWeights は重みをio.Writerに書き込む
func WriteWeights(out io.Writer, w *ModelWeights) error {
	if w == nil {
		return errors.NewValueError("WriteWeights", "weights are nil")
	}
	if err := w.Validate(); err != nil {
		return err
	}
	data, err := w.ToJSON()
	if err != nil {
		return errors.Wrap(err, "failed to encode model weights")
	}
	if _, err := out.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, "failed to write model weights")
	}
	return nil
}

// ReadWeights はio.Readerから重みを読み込み、検証する
func ReadWeights(r io.Reader) (*ModelWeights, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read model weights")
	}
	w := &ModelWeights{}
	if err := w.FromJSON(data); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}
