package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// SKLearnModelSpec はエクスポートされたモデルの種類とフォーマットのバージョン
type SKLearnModelSpec struct {
	Name          string `json:"name"`
	FormatVersion string `json:"format_version"`
}

// SKLearnModel はscikit-learn互換のJSONエンベロープ
// Params の中身はモデルごとに異なる
type SKLearnModel struct {
	ModelSpec SKLearnModelSpec `json:"model_spec"`
	Params    json.RawMessage  `json:"params"`
}

// WriteSKLearnModel はパラメータをエンベロープに包んでJSONで書き出す
func WriteSKLearnModel(w io.Writer, name, version string, params interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}

	skModel := SKLearnModel{
		ModelSpec: SKLearnModelSpec{Name: name, FormatVersion: version},
		Params:    raw,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&skModel); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// ReadSKLearnModel はエンベロープを読み込み、モデル名を検証してから params にデコードする
func ReadSKLearnModel(r io.Reader, name string, params interface{}) (SKLearnModelSpec, error) {
	var skModel SKLearnModel
	if err := json.NewDecoder(r).Decode(&skModel); err != nil {
		return SKLearnModelSpec{}, fmt.Errorf("failed to decode model: %w", err)
	}
	if skModel.ModelSpec.Name != name {
		return skModel.ModelSpec, fmt.Errorf("unexpected model %q, want %q", skModel.ModelSpec.Name, name)
	}
	if err := json.Unmarshal(skModel.Params, params); err != nil {
		return skModel.ModelSpec, fmt.Errorf("failed to decode params: %w", err)
	}
	return skModel.ModelSpec, nil
}
