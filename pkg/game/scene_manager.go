package game

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory 按关卡ID创建场景，避免 game 包依赖 scenes 包
type SceneFactory func(levelID string) (Scene, error)

// SceneManager 管理当前活动场景
// 任意时刻只有一个场景的 Update 和 Draw 被调用
type SceneManager struct {
	currentScene Scene
	currentLevel string
	sceneFactory SceneFactory
}

// NewSceneManager 创建场景管理器（初始没有活动场景）
func NewSceneManager(factory SceneFactory) *SceneManager {
	return &SceneManager{sceneFactory: factory}
}

// SwitchTo 切换到指定场景
func (sm *SceneManager) SwitchTo(scene Scene) {
	sm.currentScene = scene
}

// GetCurrentScene 当前场景，没有时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// CurrentLevel 最近一次通过 LoadLevel 加载的关卡
func (sm *SceneManager) CurrentLevel() string {
	return sm.currentLevel
}

// LoadLevel 用工厂创建关卡场景并切换过去
// 创建失败时保留当前场景
func (sm *SceneManager) LoadLevel(levelID string) error {
	log.Printf("[SceneManager] Loading level %s", levelID)
	if sm.sceneFactory == nil {
		return fmt.Errorf("scene factory not set")
	}

	scene, err := sm.sceneFactory(levelID)
	if err != nil {
		log.Printf("[SceneManager] ERROR: cannot create scene for level %s: %v", levelID, err)
		return fmt.Errorf("failed to create scene for level %s: %w", levelID, err)
	}
	sm.SwitchTo(scene)
	sm.currentLevel = levelID
	return nil
}

// Reload 重新创建当前关卡的场景（失败后重新开始）
func (sm *SceneManager) Reload() error {
	if sm.currentLevel == "" {
		return fmt.Errorf("no level loaded")
	}
	return sm.LoadLevel(sm.currentLevel)
}

func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
